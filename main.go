// Gembrowse is a terminal browser for the small web: gemini, spartan,
// gopher, finger, file and data URLs.
package main

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"gembrowse/browser"
	"gembrowse/config"
	"gembrowse/document"
	"gembrowse/favourites"
	"gembrowse/scheme"
)

func main() {
	addr := ""
	printMode := false
	initConfig := false
	verbose := false

	for _, arg := range os.Args[1:] {
		switch arg {
		case "-p", "--print":
			printMode = true
		case "--init-config":
			initConfig = true
		case "-v", "--verbose":
			verbose = true
		case "-h", "--help":
			printUsage()
			return
		default:
			if addr == "" {
				addr = arg
			}
		}
	}

	// Generate default config and exit
	if initConfig {
		fmt.Print(config.DefaultTOML())
		return
	}

	if err := run(addr, printMode, verbose); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gembrowse - Small Web Browser

Usage: gembrowse [options] [url]

Options:
  -p, --print       Print page to stdout (one-shot mode)
  -v, --verbose     Log request activity to stderr
  --init-config     Output default config (redirect to ~/.config/gembrowse/config.toml)
  -h, --help        Show this help

Examples:
  gembrowse                                   Open the configured homepage
  gembrowse gemini://gemini.circumlunar.space Open URL
  gembrowse -p gopher://gopher.floodgap.com   Print page to stdout
  gembrowse --init-config > ~/.config/gembrowse/config.toml

Interactive commands:
  <number>          Follow the numbered link
  o <url>           Open an address
  b, f              Back / forward in history
  r                 Reload
  l                 List links on the page
  fav, unfav        Add or remove the current page as a favourite
  favs              Show the favourites page
  q                 Quit`)
}

// loadEvent is what the session reports back after a visit: a page, a
// failure, or a request the user has to answer.
type loadEvent struct {
	kind string // "loaded", "failed", "input", "input-sensitive", "download", "upload"
	a, b string
}

func run(addr string, printMode, verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if addr == "" {
		addr = cfg.General.Homepage
	}
	if cfg.Network.TimeoutSeconds > 0 {
		scheme.DialTimeout = time.Duration(cfg.Network.TimeoutSeconds) * time.Second
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer logger.Sync()
	}

	doc := document.New(os.Stdout, cfg.Rendering.DefaultWidth)
	doc.SetPlain(cfg.Rendering.Plain)

	b := browser.New(browser.Options{
		Renderer:     doc,
		Logger:       logger,
		MaxRedirects: cfg.Network.MaxRedirects,
	})
	defer b.Close()

	// Buffered so synchronous loads (file, data) can emit without a
	// reader waiting yet.
	loads := make(chan loadEvent, 4)
	b.ConnectPageLoaded(func(uri string) { loads <- loadEvent{kind: "loaded", a: uri} })
	b.ConnectPageLoadFailed(func(msg string) { loads <- loadEvent{kind: "failed", a: msg} })
	b.ConnectRequestInput(func(prompt, uri string) { loads <- loadEvent{kind: "input", a: prompt, b: uri} })
	b.ConnectRequestInputSensitive(func(prompt, uri string) {
		loads <- loadEvent{kind: "input-sensitive", a: prompt, b: uri}
	})
	b.ConnectRequestDownload(func(mime, filename string) {
		loads <- loadEvent{kind: "download", a: mime, b: filename}
	})
	b.ConnectRequestUpload(func(uri string) { loads <- loadEvent{kind: "upload", a: uri} })
	b.ConnectPageLoadRedirect(func(uri string) {
		fmt.Fprintf(os.Stderr, "redirected to %s\n", uri)
	})
	b.ConnectRequestUnsupportedScheme(func(uri string) {
		fmt.Fprintf(os.Stderr, "unsupported scheme: %s\n", uri)
	})

	favStore, err := favourites.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading favourites: %v\n", err)
		favStore = &favourites.Store{}
	}

	stdin := bufio.NewReader(os.Stdin)

	readLine := func(prompt string) (string, bool) {
		fmt.Print(prompt)
		line, err := stdin.ReadString('\n')
		if err != nil {
			return "", false
		}
		return strings.TrimSpace(line), true
	}

	// load starts a visit and pumps events until the page settles:
	// rendered, failed, or abandoned by the user.
	load := func(start func()) {
		start()
		for {
			ev := <-loads
			switch ev.kind {
			case "loaded":
				return
			case "failed":
				fmt.Fprintf(os.Stderr, "load failed: %s\n", ev.a)
				return
			case "download":
				fmt.Fprintf(os.Stderr, "cannot display %s content (suggested filename: %s)\n", ev.a, ev.b)
				return
			case "input", "input-sensitive":
				answer, ok := readLine(ev.a + "> ")
				if !ok || answer == "" {
					return
				}
				target, perr := url.Parse(ev.b)
				if perr != nil {
					return
				}
				target.RawQuery = queryEscape(answer)
				b.Visit(target.String())
			case "upload":
				data, ok := readLine("data> ")
				if !ok {
					return
				}
				b.PostSpartan(ev.a, []byte(data))
			}
		}
	}

	load(func() { b.Visit(addr) })
	if printMode {
		return nil
	}

	followPrompt := func(link document.Link) {
		u, err := url.Parse(link.URL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad link target: %v\n", err)
			return
		}
		if u.Scheme == "spartan" {
			load(func() { b.RequestUpload(link.URL) })
			return
		}
		answer, ok := readLine("input> ")
		if !ok || answer == "" {
			return
		}
		u.RawQuery = queryEscape(answer)
		load(func() { b.Visit(u.String()) })
	}

	for {
		line, ok := readLine("\n" + b.URI() + "\n> ")
		if !ok {
			return nil // EOF
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "q", "quit":
			return nil
		case "b", "back":
			if !b.HasPrevious() {
				fmt.Println("no earlier page")
				continue
			}
			load(b.GoPrevious)
		case "f", "forward":
			if !b.HasNext() {
				fmt.Println("no later page")
				continue
			}
			load(b.GoNext)
		case "r", "reload":
			load(b.Reload)
		case "l", "links":
			for _, link := range doc.Links() {
				fmt.Printf("[%d] %s\n", link.Index, link.URL)
			}
		case "fav":
			if favStore.Add(b.URI(), "") {
				if err := favStore.Save(); err != nil {
					fmt.Fprintf(os.Stderr, "saving favourites: %v\n", err)
				}
			} else {
				fmt.Println("already a favourite")
			}
		case "unfav":
			if favStore.Remove(b.URI()) {
				if err := favStore.Save(); err != nil {
					fmt.Fprintf(os.Stderr, "saving favourites: %v\n", err)
				}
			} else {
				fmt.Println("not a favourite")
			}
		case "favs":
			doc.RenderGemtext(favStore.Page())
		case "o", "open":
			if len(fields) > 1 {
				load(func() { b.Visit(fields[1]) })
			}
		case "h", "help":
			printUsage()
		default:
			n, err := strconv.Atoi(fields[0])
			if err != nil {
				// Not a command; treat it as an address.
				load(func() { b.Visit(fields[0]) })
				continue
			}
			links := doc.Links()
			if n < 1 || n > len(links) {
				fmt.Println("no such link")
				continue
			}
			link := links[n-1]
			if link.Prompt {
				followPrompt(link)
				continue
			}
			load(func() { b.Visit(link.URL) })
		}
	}
}

// queryEscape percent-encodes an input answer for use as a URL query.
// Spaces become %20 rather than '+'; gemini servers expect the former.
func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
