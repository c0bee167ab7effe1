// Package shortcuts resolves keyword shortcuts to URLs. Shortcut
// definitions live in remote YAML namespace files; a shortcut is keyed
// by its keyword plus the number of arguments it takes, so "w 1" and
// "w 0" are distinct entries. Namespaces later in the user's list
// override earlier ones.
package shortcuts

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Shortcut is one resolvable entry of a namespace.
type Shortcut struct {
	Keyword   string
	ArgCount  int
	Title     string
	URL       string
	Namespace string
}

// key is how a namespace file addresses a shortcut: "keyword argcount".
func key(keyword string, argCount int) string {
	return fmt.Sprintf("%s %d", keyword, argCount)
}

// entry is the YAML shape of one shortcut. A bare string is shorthand
// for {url: ...}.
type entry struct {
	URL   string `yaml:"url"`
	Title string `yaml:"title"`
}

func (e *entry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.URL = node.Value
		return nil
	}
	type plain entry
	return node.Decode((*plain)(e))
}

// parseNamespace decodes a namespace YAML document into shortcuts.
func parseNamespace(namespace string, data []byte) (map[string]Shortcut, error) {
	raw := map[string]entry{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("namespace %s: %w", namespace, err)
	}

	out := make(map[string]Shortcut, len(raw))
	for k, e := range raw {
		keyword, argCount, ok := splitKey(k)
		if !ok || e.URL == "" {
			continue
		}
		out[key(keyword, argCount)] = Shortcut{
			Keyword:   keyword,
			ArgCount:  argCount,
			Title:     e.Title,
			URL:       e.URL,
			Namespace: namespace,
		}
	}
	return out, nil
}

func splitKey(k string) (keyword string, argCount int, ok bool) {
	parts := strings.Fields(k)
	if len(parts) != 2 {
		return "", 0, false
	}
	n := 0
	if _, err := fmt.Sscanf(parts[1], "%d", &n); err != nil || n < 0 {
		return "", 0, false
	}
	return parts[0], n, true
}

var placeholderRe = regexp.MustCompile(`<[^<>]+>`)

// expand substitutes args into the URL's <placeholder> slots in order
// of appearance. Args are percent-encoded.
func expand(rawURL string, args []string) string {
	i := 0
	return placeholderRe.ReplaceAllStringFunc(rawURL, func(string) string {
		if i >= len(args) {
			return ""
		}
		arg := url.QueryEscape(args[i])
		i++
		return arg
	})
}
