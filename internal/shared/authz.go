package shared

// Core platform permissions.
const (
	PermUsersView = "users.view"
	PermUsersEdit = "users.edit"

	PermRolesView = "roles.view"
	PermRolesEdit = "roles.edit"

	PermPermissionsView = "permissions.view"

	PermBranchesView = "branches.view"
	PermBranchesEdit = "branches.edit"
)

// Academic permissions.
const (
	PermStudentsView = "students.view"
	PermStudentsEdit = "students.edit"

	PermTeachersView = "teachers.view"
	PermTeachersEdit = "teachers.edit"

	PermCoursesView = "courses.view"
	PermCoursesEdit = "courses.edit"

	PermGradesView = "grades.view"
	PermGradesEdit = "grades.edit"

	PermAttendanceView = "attendance.view"
	PermAttendanceEdit = "attendance.edit"
)

// Communication and reporting permissions.
const (
	PermAnnouncementsView = "announcements.view"
	PermAnnouncementsEdit = "announcements.edit"

	PermMessagesUse = "messages.use"

	PermReportsView   = "reports.view"
	PermReportsExport = "reports.export"
)

// AllScopes lists every permission known to the platform, used by the
// seeder and the permissions catalog endpoint.
func AllScopes() []string {
	return []string{
		PermUsersView, PermUsersEdit,
		PermRolesView, PermRolesEdit,
		PermPermissionsView,
		PermBranchesView, PermBranchesEdit,
		PermStudentsView, PermStudentsEdit,
		PermTeachersView, PermTeachersEdit,
		PermCoursesView, PermCoursesEdit,
		PermGradesView, PermGradesEdit,
		PermAttendanceView, PermAttendanceEdit,
		PermAnnouncementsView, PermAnnouncementsEdit,
		PermMessagesUse,
		PermReportsView, PermReportsExport,
	}
}
