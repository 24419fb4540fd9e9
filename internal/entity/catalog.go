package entity

import "time"

// Catalog returns the registry of business entities served by the API.
func Catalog() (*Registry, error) {
	return NewRegistry(
		employee(),
		payRun(),
		investigationCase(),
		mediaAsset(),
		portalMessage(),
		serviceOrder(),
	)
}

func employee() *Entity {
	return &Entity{
		Name:               "Employee",
		Table:              "employees",
		TenantColumn:       "tenant_id",
		PrimaryKey:         "id",
		DefaultSort:        "updatedAt",
		RequiredPermission: "payroll:read",
		FacetFields:        []string{"status", "department"},
		CacheMaxAge:        30 * time.Second,
		Fields: []Field{
			{Name: "id", Column: "id", Type: TypeID, Filterable: true, Sortable: true},
			{Name: "firstName", Column: "first_name", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "lastName", Column: "last_name", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "email", Column: "email", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "status", Column: "status", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "department", Column: "department", Type: TypeString, Filterable: true, Sortable: true, Nullable: true},
			{Name: "salary", Column: "salary", Type: TypeFloat, Filterable: true, Sortable: true},
			{Name: "hiredAt", Column: "hired_at", Type: TypeTime, Filterable: true, Sortable: true},
			{Name: "createdAt", Column: "created_at", Type: TypeTime, Filterable: true, Sortable: true},
			{Name: "updatedAt", Column: "updated_at", Type: TypeTime, Filterable: true, Sortable: true},
		},
	}
}

func payRun() *Entity {
	return &Entity{
		Name:               "PayRun",
		Table:              "pay_runs",
		TenantColumn:       "tenant_id",
		PrimaryKey:         "id",
		DefaultSort:        "periodEnd",
		RequiredPermission: "payroll:read",
		FacetFields:        []string{"status"},
		CacheMaxAge:        30 * time.Second,
		Fields: []Field{
			{Name: "id", Column: "id", Type: TypeID, Filterable: true, Sortable: true},
			{Name: "periodStart", Column: "period_start", Type: TypeTime, Filterable: true, Sortable: true},
			{Name: "periodEnd", Column: "period_end", Type: TypeTime, Filterable: true, Sortable: true},
			{Name: "status", Column: "status", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "totalGross", Column: "total_gross", Type: TypeFloat, Filterable: true, Sortable: true},
			{Name: "totalNet", Column: "total_net", Type: TypeFloat, Filterable: true, Sortable: true},
			{Name: "createdAt", Column: "created_at", Type: TypeTime, Filterable: true, Sortable: true},
			{Name: "updatedAt", Column: "updated_at", Type: TypeTime, Filterable: true, Sortable: true},
		},
	}
}

func investigationCase() *Entity {
	return &Entity{
		Name:               "InvestigationCase",
		Table:              "investigation_cases",
		TenantColumn:       "tenant_id",
		PrimaryKey:         "id",
		DefaultSort:        "updatedAt",
		RequiredPermission: "cases:read",
		FacetFields:        []string{"status", "severity"},
		Fields: []Field{
			{Name: "id", Column: "id", Type: TypeID, Filterable: true, Sortable: true},
			{Name: "reference", Column: "reference", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "title", Column: "title", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "status", Column: "status", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "severity", Column: "severity", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "assigneeId", Column: "assignee_id", Type: TypeID, Filterable: true, Sortable: true, Nullable: true},
			{Name: "openedAt", Column: "opened_at", Type: TypeTime, Filterable: true, Sortable: true},
			{Name: "closedAt", Column: "closed_at", Type: TypeTime, Filterable: true, Sortable: true, Nullable: true},
			{Name: "createdAt", Column: "created_at", Type: TypeTime, Filterable: true, Sortable: true},
			{Name: "updatedAt", Column: "updated_at", Type: TypeTime, Filterable: true, Sortable: true},
		},
	}
}

func mediaAsset() *Entity {
	return &Entity{
		Name:         "MediaAsset",
		Table:        "media_assets",
		TenantColumn: "tenant_id",
		PrimaryKey:   "id",
		DefaultSort:  "createdAt",
		FacetFields:  []string{"contentType", "status"},
		CacheMaxAge:  5 * time.Minute,
		Fields: []Field{
			{Name: "id", Column: "id", Type: TypeID, Filterable: true, Sortable: true},
			{Name: "fileName", Column: "file_name", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "contentType", Column: "content_type", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "sizeBytes", Column: "size_bytes", Type: TypeInt, Filterable: true, Sortable: true},
			{Name: "status", Column: "status", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "uploadedBy", Column: "uploaded_by", Type: TypeID, Filterable: true, Sortable: false, Nullable: true},
			{Name: "createdAt", Column: "created_at", Type: TypeTime, Filterable: true, Sortable: true},
		},
	}
}

func portalMessage() *Entity {
	return &Entity{
		Name:         "PortalMessage",
		Table:        "portal_messages",
		TenantColumn: "tenant_id",
		PrimaryKey:   "id",
		DefaultSort:  "sentAt",
		FacetFields:  []string{"status"},
		ScopeFields:  []string{"portalId"},
		Fields: []Field{
			{Name: "id", Column: "id", Type: TypeID, Filterable: true, Sortable: true},
			{Name: "portalId", Column: "portal_id", Type: TypeID, Filterable: true, Sortable: false},
			{Name: "subject", Column: "subject", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "status", Column: "status", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "sentAt", Column: "sent_at", Type: TypeTime, Filterable: true, Sortable: true, Nullable: true},
			{Name: "createdAt", Column: "created_at", Type: TypeTime, Filterable: true, Sortable: true},
		},
	}
}

func serviceOrder() *Entity {
	return &Entity{
		Name:               "ServiceOrder",
		Table:              "service_orders",
		TenantColumn:       "tenant_id",
		PrimaryKey:         "id",
		DefaultSort:        "updatedAt",
		RequiredPermission: "service:read",
		FacetFields:        []string{"status"},
		CacheMaxAge:        30 * time.Second,
		Fields: []Field{
			{Name: "id", Column: "id", Type: TypeID, Filterable: true, Sortable: true},
			{Name: "vehicleVin", Column: "vehicle_vin", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "status", Column: "status", Type: TypeString, Filterable: true, Sortable: true},
			{Name: "scheduledAt", Column: "scheduled_at", Type: TypeTime, Filterable: true, Sortable: true, Nullable: true},
			{Name: "completedAt", Column: "completed_at", Type: TypeTime, Filterable: true, Sortable: true, Nullable: true},
			{Name: "createdAt", Column: "created_at", Type: TypeTime, Filterable: true, Sortable: true},
			{Name: "updatedAt", Column: "updated_at", Type: TypeTime, Filterable: true, Sortable: true},
		},
	}
}
