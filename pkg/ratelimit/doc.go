// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package ratelimit provides the token-bucket limiter each REST vendor
// provider (github, gitlab, gitea) wraps its API calls with, so a burst
// of RPC-driven queries against a single forge backs off before the
// forge starts handing back 403/429s.
//
// # Usage
//
//	limiter := ratelimit.NewLimiter(5000) // requests/hour budget
//	if err := limiter.Wait(ctx); err != nil {
//		return err // ctx canceled while waiting for a slot
//	}
//	resp, err := doRequest()
//	limiter.UpdateFromHeaders(resp) // sync budget from the forge's own headers
package ratelimit
