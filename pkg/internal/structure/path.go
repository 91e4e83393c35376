package structure

import "strconv"

// ChildKey returns the path of an object member, e.g. ChildKey("a", "b") ->
// "a.b". The root container uses an empty prefix so its members come out as
// bare key names.
func ChildKey(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

// ChildIndex returns the path of an array element, e.g. ChildIndex("c", 2) ->
// "c[2]".
func ChildIndex(parent string, i int) string {
	return parent + "[" + strconv.Itoa(i) + "]"
}

// TruncationPath returns the synthetic path recording that an array's tail was
// not individually tracked. The root container uses an empty prefix, matching
// its element paths.
func TruncationPath(parent string) string {
	if parent == RootPath {
		parent = ""
	}
	return parent + "[...]"
}
