// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sse implements a tolerant Server-Sent-Events reader for provider
// streaming responses.
//
// The reader surfaces data payloads only, ignores every other field, and
// treats the literal [DONE] payload as the terminal marker:
//
//	r := sse.NewReader(resp.Body)
//	for {
//	    data, err := r.Next()
//	    if err == sse.ErrDone || err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    handle(data)
//	}
package sse
