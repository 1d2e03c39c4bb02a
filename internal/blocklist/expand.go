// Package blocklist builds and merges the managed block of redirect entries
// that hosts-page-blocker keeps inside the system hosts file.
//
// Everything in this package is pure: no filesystem access, no globals.
// Persistence lives in the hostsfile package.
package blocklist

import (
	"sort"
	"strings"
)

// wwwPrefix is the subdomain added next to every bare hostname.
const wwwPrefix = "www."

// Expand turns already-normalized hostnames into the sorted, deduplicated
// set of hostnames to block. Every bare hostname is accompanied by its
// www. counterpart; hostnames that already start with www. are kept as is.
func Expand(urls []string) []string {
	set := make(map[string]struct{}, len(urls)*2)
	for _, u := range urls {
		if u == "" {
			continue
		}
		set[u] = struct{}{}
		if !strings.HasPrefix(u, wwwPrefix) {
			set[wwwPrefix+u] = struct{}{}
		}
	}

	hosts := make([]string, 0, len(set))
	for h := range set {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// Without returns hosts minus every hostname in remove. Both inputs are
// expected in Expand form; the result stays sorted.
func Without(hosts, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, h := range remove {
		drop[h] = struct{}{}
	}

	result := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if _, ok := drop[h]; !ok {
			result = append(result, h)
		}
	}
	return result
}
