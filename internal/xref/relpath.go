package xref

import "strings"

// RelativePath returns the shortest relative path from the directory of
// `from` to `to`. Both arguments are forward-slash output paths rooted at the
// same base, regardless of host path convention. Identical paths yield "".
func RelativePath(from, to string) string {
	if from == to {
		return ""
	}

	fromDirs := splitDirs(from)
	toSegs := strings.Split(to, "/")
	toDirs := toSegs[:len(toSegs)-1]

	common := 0
	for common < len(fromDirs) && common < len(toDirs) && fromDirs[common] == toDirs[common] {
		common++
	}

	var b strings.Builder
	for i := common; i < len(fromDirs); i++ {
		b.WriteString("../")
	}
	b.WriteString(strings.Join(toSegs[common:], "/"))
	return b.String()
}

// splitDirs returns the directory segments of a forward-slash file path.
func splitDirs(p string) []string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return nil
	}
	return strings.Split(p[:i], "/")
}
