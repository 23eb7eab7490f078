// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides session id generation and the optional admin key check.

# Session IDs

GenerateSessionID returns a 10-character nanoid drawn from an alphabet without
look-alike characters (no 0/o, 1/l/i), so ids survive being read aloud or typed
from a shared screen:

	id, err := auth.GenerateSessionID()

# Admin Key

Catalog writes (questions and categories) can be protected by setting ADMIN_KEY.
Clients then send it in the X-Admin-Key header:

	if err := auth.ValidateAdminKey(r.Header.Get("X-Admin-Key"), cfg.AdminKey); err != nil {
		// 401
	}

With no ADMIN_KEY configured every request passes.
*/
package auth
