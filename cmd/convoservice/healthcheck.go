/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"log"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/publicsuffix"
)

// newClient builds an http.Client carrying a cookie jar scoped by the
// public suffix list, so a probed platform webhook endpoint that sets
// session cookies across subdomains behaves the way a browser would.
func newClient() (*http.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &http.Client{Jar: jar, Timeout: 10 * time.Second}, nil
}

// pollHealth periodically GETs url (if set) and publishes the result
// to the console, so a developer watching /console can see whether
// the platform endpoint this service is standing in for is reachable.
func pollHealth(ctx context.Context, url string, interval time.Duration, c *console) {
	if url == "" {
		return
	}
	client, err := newClient()
	if err != nil {
		log.Printf("convoservice: health client: %v", err)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				log.Printf("convoservice: health request: %v", err)
				continue
			}
			resp, err := client.Do(req)
			event := map[string]interface{}{"type": "health", "url": url}
			if err != nil {
				event["error"] = err.Error()
			} else {
				event["status"] = resp.StatusCode
				resp.Body.Close()
			}
			c.publish(event)
		}
	}
}
