package rbac

const (
	PermImport       = "qbank:import"
	PermPreview      = "qbank:preview"
	PermExamView     = "exam:view"
	PermExamViewKey  = "exam:view-key" // answer keys and explanations
	PermExamExport   = "exam:export"
	PermImportsView  = "imports:view"
	PermSubjectsView = "subjects:view"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	RoleStudent: {
		PermExamView,
		PermSubjectsView,
	},
	RoleTeacher: {
		"qbank:*",
		"exam:*",
		PermImportsView,
		PermSubjectsView,
	},
	RoleAdmin: {
		"*",
	},
}
