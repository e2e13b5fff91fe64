package auth

const (
	RoleAdmin    = "admin"
	RoleApprover = "approver"
	RoleEmployee = "employee"
)
