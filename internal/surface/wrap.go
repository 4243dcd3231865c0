package surface

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// HeightChannel is the single approved outbound channel from an isolated
// context to the host. Messages on any other channel are ignored.
const HeightChannel = "surface-height"

// ContentPolicy forbids all network-sourced subresources except inline
// data URIs, forbids inbound framing, and permits only inline style and
// script.
const ContentPolicy = "default-src 'none'; img-src data:; media-src data:; " +
	"font-src data:; style-src 'unsafe-inline'; script-src 'unsafe-inline'; " +
	"frame-ancestors 'none'"

// reporterScript measures rendered content height on load, on resize,
// and on layout mutation when an observation primitive exists, else by
// polling, and reports it through the single approved channel.
const reporterScript = `(function() {
  var CHANNEL = %q;
  var INTERVAL = %d;
  function measure() {
    var h = 0;
    if (document.documentElement) h = document.documentElement.scrollHeight;
    if (document.body && document.body.scrollHeight > h) h = document.body.scrollHeight;
    return h;
  }
  function report() {
    if (window.parent && window.parent !== window) {
      window.parent.postMessage({ type: CHANNEL, value: measure() }, "*");
    }
  }
  window.addEventListener("load", report);
  window.addEventListener("resize", report);
  if (typeof MutationObserver === "function") {
    new MutationObserver(report).observe(document.documentElement, {
      childList: true, subtree: true, attributes: true
    });
  } else {
    setInterval(report, INTERVAL);
  }
  if (typeof ResizeObserver === "function") {
    new ResizeObserver(report).observe(document.documentElement);
  }
})();`

var (
	reHead = regexp.MustCompile(`(?i)<head[^>]*>`)
	reHTML = regexp.MustCompile(`(?i)<html[^>]*>`)
)

// Wrap prepares a raw payload for the isolated context. A payload that
// already carries a document root gets the two fragments injected into
// it; anything else is wrapped in a minimal synthesized document.
func Wrap(payload string, pollMillis int) string {
	fragments := fmt.Sprintf("<meta http-equiv=\"Content-Security-Policy\" content=\"%s\">\n<script>%s</script>",
		ContentPolicy, fmt.Sprintf(reporterScript, HeightChannel, pollMillis))

	if hasDocumentRoot(payload) {
		if loc := reHead.FindStringIndex(payload); loc != nil {
			return payload[:loc[1]] + fragments + payload[loc[1]:]
		}
		if loc := reHTML.FindStringIndex(payload); loc != nil {
			return payload[:loc[1]] + "<head>" + fragments + "</head>" + payload[loc[1]:]
		}
		// Root marker present but malformed; prepend so the policy still
		// lands before any payload content.
		return fragments + payload
	}

	return fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head>\n%s\n</head>\n<body>\n%s\n</body>\n</html>",
		fragments, payload)
}

// hasDocumentRoot tokenizes the payload looking for an <html> root or a
// doctype. Tokenizing beats substring search here: "<html" inside a code
// sample or attribute value is not a root marker.
func hasDocumentRoot(payload string) bool {
	tokenizer := html.NewTokenizer(strings.NewReader(payload))
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return false
		case html.DoctypeToken:
			return true
		case html.TextToken:
			// Content before any tag means no root
			if strings.TrimSpace(string(tokenizer.Text())) != "" {
				return false
			}
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			return strings.EqualFold(string(name), "html")
		}
	}
}
