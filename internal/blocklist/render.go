package blocklist

const (
	// MarkerBegin opens the managed block.
	MarkerBegin = "# hosts-page-blocker BEGIN"
	// MarkerEnd closes the managed block.
	MarkerEnd = "# hosts-page-blocker END"

	// SinkIPv4 and SinkIPv6 are the addresses blocked hostnames resolve to.
	SinkIPv4 = "0.0.0.0"
	SinkIPv6 = "::1"
)

// Render produces the managed block for hosts as newline-terminated lines:
// the begin marker, an IPv4 and an IPv6 entry per hostname, the end marker.
// hosts must already be sorted, as returned by Expand.
func Render(hosts []string) []string {
	lines := make([]string, 0, len(hosts)*2+2)
	lines = append(lines, MarkerBegin+"\n")
	for _, h := range hosts {
		lines = append(lines, entry(SinkIPv4, h), entry(SinkIPv6, h))
	}
	lines = append(lines, MarkerEnd+"\n")
	return lines
}

func entry(ip, host string) string {
	return ip + "\t\t" + host + "\n"
}
