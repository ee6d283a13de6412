// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package keepalive is the HTTP side of a session monitor.
//
// A Client renews the server session with a background request and performs
// the logout navigation. A Client is a session.Navigator, and Client.Renewer
// binds a keep-alive URL to give a session.Renewer.
//
// # Requests
//
// Renew sends GET <keep-alive URL> with the header
// "X-Requested-With: XMLHttpRequest". Any 2xx response is success and the body
// is discarded. Other statuses are returned as *StatusError.
//
// Navigate sends a plain GET to the target and follows redirects. Only
// transport failures are errors.
//
// Relative URLs resolve against the base URL. The session cookie lives in a
// cookie jar scoped to the base URL's origin; requests to another origin are
// sent without it.
//
// # Usage
//
//	client, err := keepalive.New("https://app.example.com",
//	    keepalive.WithSessionCookie("sessionid", token),
//	    keepalive.WithRateLimit(2),
//	)
//	if err != nil {
//	    return err
//	}
//	monitor, err := session.New(cfg,
//	    session.WithRenewer(client.Renewer(cfg.KeepAliveURL)),
//	    session.WithNavigator(client),
//	)
package keepalive
