//go:build !debug_gen_arena

package arenautils

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_gen_arena build tag is present
func DebugValidate(validatable Validatable) {
}
