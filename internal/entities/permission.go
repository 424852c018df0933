package entities

// PermissionCode identifies a single grantable permission. The numeric
// suffixes come from the platform's permission catalogue and are stable
// across deployments.
type PermissionCode string

const (
	// Organization / membership administration
	PermissionViewThisOrganizationProfile PermissionCode = "view_this_organization_profile_10110"
	PermissionViewMyOrganizationProfile   PermissionCode = "view_my_organization_profile_10111"
	PermissionEditThisOrganization        PermissionCode = "edit_this_organization_10330"
	PermissionJoinOrganization            PermissionCode = "join_organization_10881"

	// Academic profile
	PermissionViewSchool        PermissionCode = "view_school_20110"
	PermissionViewProgram       PermissionCode = "view_program_20111"
	PermissionViewAgeRange      PermissionCode = "view_age_range_20112"
	PermissionViewGrades        PermissionCode = "view_grades_20113"
	PermissionViewClasses       PermissionCode = "view_classes_20114"
	PermissionViewSubjects      PermissionCode = "view_subjects_20115"
	PermissionViewSchoolClasses PermissionCode = "view_school_classes_20117"
	PermissionViewMyClasses     PermissionCode = "view_my_classes_20118"
	PermissionViewMySchool      PermissionCode = "view_my_school_20119"
	PermissionCreateSchool      PermissionCode = "create_school_20220"
	PermissionCreateClass       PermissionCode = "create_class_20224"
	PermissionEditSchool        PermissionCode = "edit_school_20330"
	PermissionEditClass         PermissionCode = "edit_class_20334"
	PermissionDeleteSchool      PermissionCode = "delete_school_20440"
	PermissionDeleteClass       PermissionCode = "delete_class_20444"

	// Roles
	PermissionViewRolesAndPermissions    PermissionCode = "view_roles_and_permissions_30110"
	PermissionCreateRoleWithPermissions  PermissionCode = "create_role_with_permissions_30222"
	PermissionEditRoleAndPermissions     PermissionCode = "edit_role_and_permissions_30332"
	PermissionDeleteRole                 PermissionCode = "delete_role_30440"

	// Users
	PermissionViewUserPage      PermissionCode = "view_user_page_40101"
	PermissionViewUsers         PermissionCode = "view_users_40110"
	PermissionViewMySchoolUsers PermissionCode = "view_my_school_users_40111"
	PermissionViewMyClassUsers  PermissionCode = "view_my_class_users_40112"
	PermissionCreateUsers       PermissionCode = "create_users_40220"
	PermissionEditUsers         PermissionCode = "edit_users_40330"
	PermissionDeleteUsers       PermissionCode = "delete_users_40440"
	PermissionUploadUsers       PermissionCode = "upload_users_40880"
	PermissionSendInvitation    PermissionCode = "send_invitation_40882"
	PermissionDeactivateUser    PermissionCode = "deactivate_user_40883"
	PermissionReactivateUser    PermissionCode = "reactivate_user_40884"
)

// SuperAdminPermissions returns the static permission allow-list used for
// admins and machine callers. API key principals pass a permission check iff
// the permission appears here; no per-row check is performed for them.
func SuperAdminPermissions() []PermissionCode {
	return []PermissionCode{
		PermissionViewThisOrganizationProfile,
		PermissionViewMyOrganizationProfile,
		PermissionEditThisOrganization,
		PermissionJoinOrganization,
		PermissionViewSchool,
		PermissionViewProgram,
		PermissionViewAgeRange,
		PermissionViewGrades,
		PermissionViewClasses,
		PermissionViewSubjects,
		PermissionViewSchoolClasses,
		PermissionViewMySchool,
		PermissionCreateSchool,
		PermissionCreateClass,
		PermissionEditSchool,
		PermissionEditClass,
		PermissionDeleteSchool,
		PermissionDeleteClass,
		PermissionViewRolesAndPermissions,
		PermissionCreateRoleWithPermissions,
		PermissionEditRoleAndPermissions,
		PermissionDeleteRole,
		PermissionViewUserPage,
		PermissionViewUsers,
		PermissionCreateUsers,
		PermissionEditUsers,
		PermissionDeleteUsers,
		PermissionUploadUsers,
		PermissionSendInvitation,
		PermissionDeactivateUser,
		PermissionReactivateUser,
	}
}
