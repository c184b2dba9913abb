package microcode

import "strings"

// FormatText renders cmd as a "    gs<Name>(arg0, arg1, …),\n" line per
// §4.3. Arguments are inserted verbatim in their supplied textual form —
// no interpretation, no endian concern.
func FormatText(cmd CommandKind, args []string) string {
	var sb strings.Builder
	sb.WriteString("    gs")
	sb.WriteString(Name(cmd))
	sb.WriteByte('(')
	sb.WriteString(strings.Join(args, ", "))
	sb.WriteString("),\n")
	return sb.String()
}
