package domain

type Role string

const (
	RoleAdmin      Role = "admin"
	RolePharmacist Role = "pharmacist"
	RoleCashier    Role = "cashier"
	RoleWholesaler Role = "wholesaler"
	RoleStockClerk Role = "stock_clerk"
)

// Capabilities is the permission set a role grants. It is resolved once per
// request from the bearer token and never re-derived from the role string.
type Capabilities struct {
	ManageCatalog bool `json:"manage_catalog"`
	ReceiveStock  bool `json:"receive_stock"`
	Dispense      bool `json:"dispense"`
	WholesaleSale bool `json:"wholesale_sale"`
	ViewInventory bool `json:"view_inventory"`
	ViewSales     bool `json:"view_sales"`
}

var capabilityTable = map[Role]Capabilities{
	RoleAdmin: {
		ManageCatalog: true,
		ReceiveStock:  true,
		Dispense:      true,
		WholesaleSale: true,
		ViewInventory: true,
		ViewSales:     true,
	},
	RolePharmacist: {
		ReceiveStock:  true,
		Dispense:      true,
		ViewInventory: true,
		ViewSales:     true,
	},
	RoleCashier: {
		Dispense:      true,
		ViewInventory: true,
	},
	RoleWholesaler: {
		Dispense:      true,
		WholesaleSale: true,
		ViewInventory: true,
		ViewSales:     true,
	},
	RoleStockClerk: {
		ReceiveStock:  true,
		ViewInventory: true,
	},
}

// CapabilitiesFor returns the capability set of role and false for an unknown role.
func CapabilitiesFor(role Role) (Capabilities, bool) {
	caps, ok := capabilityTable[role]
	return caps, ok
}

type Principal struct {
	UserID       uint
	Role         Role
	Capabilities Capabilities
}
