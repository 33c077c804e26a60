package auth

const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleStaff      = "staff"
)

const (
	PermCompanyRead       = "company.read"
	PermCompanyWrite      = "company.write"
	PermStaffRead         = "staff.read"
	PermStaffWrite        = "staff.write"
	PermAttendanceRead    = "attendance.read"
	PermAttendanceWrite   = "attendance.write"
	PermAttendanceApprove = "attendance.approve"
	PermPayrollRead       = "payroll.read"
	PermPayrollRun        = "payroll.run"
	PermPayrollApprove    = "payroll.approve"
	PermPayrollPay        = "payroll.pay"
	PermLedgerPost        = "ledger.post"
	PermReportsRead       = "reports.read"
	PermSystemAdmin       = "admin.system"
)

// RolePermissions is the static permission matrix. Staff punch their own
// attendance and read their own payslips; managers additionally approve
// attendance; admins run and settle payroll; superadmins manage companies.
var RolePermissions = map[string][]string{
	RoleStaff: {
		PermAttendanceRead,
		PermAttendanceWrite,
		PermPayrollRead,
	},
	RoleManager: {
		PermStaffRead,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermAttendanceApprove,
		PermPayrollRead,
		PermReportsRead,
	},
	RoleAdmin: {
		PermCompanyRead,
		PermCompanyWrite,
		PermStaffRead,
		PermStaffWrite,
		PermAttendanceRead,
		PermAttendanceWrite,
		PermAttendanceApprove,
		PermPayrollRead,
		PermPayrollRun,
		PermPayrollApprove,
		PermPayrollPay,
		PermLedgerPost,
		PermReportsRead,
	},
	RoleSuperAdmin: {
		PermCompanyRead,
		PermCompanyWrite,
		PermStaffRead,
		PermStaffWrite,
		PermAttendanceRead,
		PermAttendanceApprove,
		PermPayrollRead,
		PermPayrollRun,
		PermPayrollApprove,
		PermPayrollPay,
		PermLedgerPost,
		PermReportsRead,
		PermSystemAdmin,
	},
}

// HasPermission checks the static matrix.
func HasPermission(role, permission string) bool {
	for _, candidate := range RolePermissions[role] {
		if candidate == permission {
			return true
		}
	}
	return false
}

// UserContext is the authenticated identity carried through request
// context by the auth middleware.
type UserContext struct {
	UserID    string
	CompanyID string
	StaffID   string
	Role      string
}
