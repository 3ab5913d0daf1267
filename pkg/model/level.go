package model

// PermissionLevel is the capability level carried by a grant or required by a
// caller. Levels are strictly ordered by their numeric value, so a grant at a
// higher level satisfies any lower requirement.
type PermissionLevel int

const (
	LevelNothing  PermissionLevel = 1 << 0
	LevelReadable PermissionLevel = 1 << 1
	LevelWritable PermissionLevel = 1 << 2
	LevelFull     PermissionLevel = 1 << 3
)

func (l PermissionLevel) String() string {
	switch l {
	case LevelNothing:
		return "nothing"
	case LevelReadable:
		return "readable"
	case LevelWritable:
		return "writable"
	case LevelFull:
		return "full"
	}
	return "invalid"
}

// Valid reports whether l is one of the defined levels.
func (l PermissionLevel) Valid() bool {
	switch l {
	case LevelNothing, LevelReadable, LevelWritable, LevelFull:
		return true
	}
	return false
}

// Satisfies reports whether a grant at level l covers the required level.
func (l PermissionLevel) Satisfies(required PermissionLevel) bool {
	return required <= l
}
