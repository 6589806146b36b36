package domain

// Validated argument accessors. The schema validator has already enforced
// types and defaults, so absent optional fields without defaults read as
// zero values.

func stringArg(args map[string]any, name string) string {
	value, _ := args[name].(string)
	return value
}

func intArg(args map[string]any, name string) int {
	value, _ := args[name].(int)
	return value
}

func boolArg(args map[string]any, name string) bool {
	value, _ := args[name].(bool)
	return value
}
