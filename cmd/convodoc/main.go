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

// Command convodoc renders an author's YAML script into a single
// HTML page documenting its goals and intents, for reviewing a
// script's shape without reading the YAML directly.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	md "github.com/russross/blackfriday/v2"

	"github.com/Comcast/convoengine/script"
)

func main() {
	var (
		scriptFile = flag.String("script", "", "author YAML script to render")
		out        = flag.String("out", "", "output HTML file (default: stdout)")
	)
	flag.Parse()

	if *scriptFile == "" {
		log.Fatal("convodoc: -script is required")
	}

	s, err := script.LoadFile(*scriptFile)
	if err != nil {
		log.Fatalf("convodoc: %v", err)
	}

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("convodoc: %v", err)
		}
		defer f.Close()
		w = f
	}

	render(s, w)
}

func render(s *script.AuthorScript, w *os.File) {
	fmt.Fprintln(w, `<!doctype html><html><head><meta charset="utf-8"><title>conversation script</title></head><body>`)

	fmt.Fprintln(w, `<h1>Goals</h1>`)
	for _, g := range s.Goals {
		fmt.Fprintf(w, `<h2 id="goal-%s">%s</h2>`+"\n", g.Key, g.Key)
		if g.Doc != "" {
			w.Write(md.Run([]byte(g.Doc)))
		}
		if len(g.Prompt) > 0 {
			fmt.Fprintf(w, `<p><em>prompt:</em> %v</p>`+"\n", g.Prompt)
		}
		if len(g.Ask) > 0 {
			fmt.Fprintf(w, `<p><em>ask:</em> %v</p>`+"\n", g.Ask)
		}
		for _, rt := range g.RespondTo {
			renderIntent(rt, w)
		}
	}

	fmt.Fprintln(w, `<h1>Global intents</h1>`)
	for _, id := range s.Intents {
		renderIntent(id, w)
	}

	fmt.Fprintln(w, `</body></html>`)
}

func renderIntent(id script.IntentDoc, w *os.File) {
	name := id.Name
	if name == "" {
		name = "(auto-named)"
	}
	fmt.Fprintf(w, `<h3>%s</h3>`+"\n", name)
	if id.Doc != "" {
		w.Write(md.Run([]byte(id.Doc)))
	}
	fmt.Fprintf(w, `<ul>`)
	for _, u := range id.Expecting {
		fmt.Fprintf(w, `<li><code>%s</code></li>`, u)
	}
	fmt.Fprintln(w, `</ul>`)
}
