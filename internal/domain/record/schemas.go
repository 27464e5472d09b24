package record

// Field names shared by every module.
const (
	FieldReferenceID = "referenceid"
	FieldManager     = "manager"
	FieldTSM         = "tsm"
	FieldDateCreated = "date_created"
	FieldCompanyName = "companyname"
)

func init() {
	register(ticketSchema())
	register(accountSchema())
	register(projectSchema())
	register(activitySchema())
	register(inventorySchema())
}

func ticketSchema() *Schema {
	return &Schema{
		Kind:         KindTickets,
		Title:        "Tickets",
		SearchFields: []string{"TicketReferenceNumber", FieldCompanyName, "customername", "contactnumber", "emailaddress"},
		EnumFields: []EnumField{
			{Name: "Status", Label: "Status", Options: []string{"Received", "Pending", "Endorsed", "Resolved", "Closed"}},
			{Name: "department", Label: "Department", Options: []string{"Sales", "Accounting", "Technical", "Warehouse", "Logistics"}},
			{Name: "ticketsource", Label: "Source", Options: []string{"Phone", "Email", "Walk-in", "Social Media", "Website"}},
			{Name: "remarks", Label: "Remarks", Options: []string{"Inquiry", "Quotation", "Complaint", "Follow Up", "Others"}},
		},
		DateField:     FieldDateCreated,
		OwnerField:    FieldReferenceID,
		ManagerField:  FieldManager,
		TSMField:      FieldTSM,
		StatusField:   "Status",
		GroupField:    "department",
		Required:      []string{FieldCompanyName, "customername", "Status"},
		QuickChange:   []string{"Status", "remarks"},
		BulkEditable:  []string{"department", "remarks"},
		ImportColumns: []string{FieldCompanyName, "customername", "contactnumber", "emailaddress", "ticketsource", "concern", "department", "Status", "remarks"},
		ImportConsts:  []string{FieldReferenceID, FieldManager, FieldTSM},
		ExportColumns: []Column{
			{Field: "TicketReferenceNumber", Header: "Ticket Reference Number"},
			{Field: FieldCompanyName, Header: "Company Name"},
			{Field: "customername", Header: "Customer Name"},
			{Field: "contactnumber", Header: "Contact Number"},
			{Field: "emailaddress", Header: "Email Address"},
			{Field: "ticketsource", Header: "Source"},
			{Field: "concern", Header: "Concern"},
			{Field: "department", Header: "Department"},
			{Field: "Status", Header: "Status"},
			{Field: "remarks", Header: "Remarks"},
			{Field: FieldReferenceID, Header: "Agent"},
			{Field: FieldDateCreated, Header: "Date Created"},
		},
		Reference: &ReferenceTemplate{NameField: FieldCompanyName, IDField: FieldReferenceID, Target: "TicketReferenceNumber"},
		Gate: &FieldGate{
			Selector: "Status",
			Always:   []string{FieldCompanyName, "customername", "contactnumber", "emailaddress", "ticketsource", "concern", "Status", "remarks"},
			Rules: map[string][]string{
				"Endorsed": {"department", "endorsementnotes"},
				"Resolved": {"resolution", "dateresolved"},
				"Closed":   {"resolution"},
			},
		},
		Styles: StyleTable{
			Field: "Status",
			Classes: map[string]string{
				"Received": "badge-gray",
				"Pending":  "badge-yellow",
				"Endorsed": "badge-blue",
				"Resolved": "badge-green",
				"Closed":   "badge-dark",
			},
		},
		Forward: &ForwardRule{Field: "Status", Value: "Endorsed"},
	}
}

func accountSchema() *Schema {
	return &Schema{
		Kind:         KindAccounts,
		Title:        "Company Accounts",
		SearchFields: []string{FieldCompanyName, "contactperson", "contactnumber", "emailaddress", "address"},
		EnumFields: []EnumField{
			{Name: "typeclient", Label: "Type of Client", Options: []string{"Top 50", "Next 30", "Balance 20", "New Account - Client Development", "CSR Client", "TSA Client"}},
			{Name: "status", Label: "Status", Options: []string{"Active", "Inactive", "Transferred", "For Deletion"}},
			{Name: "area", Label: "Area", Options: []string{"North Luzon", "South Luzon", "NCR", "Visayas", "Mindanao"}},
		},
		DateField:     FieldDateCreated,
		OwnerField:    FieldReferenceID,
		ManagerField:  FieldManager,
		TSMField:      FieldTSM,
		StatusField:   "status",
		GroupField:    "typeclient",
		NumericFields: []string{"quota"},
		Required:      []string{FieldCompanyName},
		QuickChange:   []string{"status"},
		BulkEditable:  []string{"typeclient", "area"},
		ImportColumns: []string{FieldCompanyName, "contactperson", "contactnumber", "emailaddress", "address", "area", "typeclient", "status", "industry"},
		ImportConsts:  []string{FieldReferenceID, FieldManager, FieldTSM, "quota"},
		ExportColumns: []Column{
			{Field: FieldCompanyName, Header: "Company Name"},
			{Field: "contactperson", Header: "Contact Person"},
			{Field: "contactnumber", Header: "Contact Number"},
			{Field: "emailaddress", Header: "Email Address"},
			{Field: "address", Header: "Address"},
			{Field: "area", Header: "Area"},
			{Field: "typeclient", Header: "Type of Client"},
			{Field: "status", Header: "Status"},
			{Field: "industry", Header: "Industry"},
			{Field: "quota", Header: "Quota"},
			{Field: FieldReferenceID, Header: "TSA"},
			{Field: FieldManager, Header: "Manager"},
		},
		Styles: StyleTable{
			Field: "status",
			Classes: map[string]string{
				"Active":       "badge-green",
				"Inactive":     "badge-gray",
				"Transferred":  "badge-blue",
				"For Deletion": "badge-red",
			},
		},
	}
}

func projectSchema() *Schema {
	return &Schema{
		Kind:         KindProjects,
		Title:        "Projects",
		SearchFields: []string{"projectname", FieldCompanyName, "contactperson"},
		EnumFields: []EnumField{
			{Name: "projectcategory", Label: "Category", Options: []string{"Lighting", "Solar", "Electrical", "Others"}},
			{Name: "projecttype", Label: "Type", Options: []string{"Supply", "Supply and Install", "Service"}},
			{Name: "status", Label: "Status", Options: []string{"Ongoing", "On Hold", "Won", "Lost"}},
		},
		DateField:     FieldDateCreated,
		OwnerField:    FieldReferenceID,
		ManagerField:  FieldManager,
		TSMField:      FieldTSM,
		StatusField:   "status",
		GroupField:    "projectcategory",
		NumericFields: []string{"amount"},
		Required:      []string{"projectname", FieldCompanyName},
		QuickChange:   []string{"status"},
		BulkEditable:  []string{"projectcategory", "projecttype"},
		ImportColumns: []string{"projectname", FieldCompanyName, "contactperson", "projectcategory", "projecttype", "amount", "status", "startdate", "targetdate"},
		ImportConsts:  []string{FieldReferenceID, FieldManager, FieldTSM},
		ExportColumns: []Column{
			{Field: "projectname", Header: "Project Name"},
			{Field: FieldCompanyName, Header: "Company Name"},
			{Field: "contactperson", Header: "Contact Person"},
			{Field: "projectcategory", Header: "Category"},
			{Field: "projecttype", Header: "Type"},
			{Field: "amount", Header: "Amount"},
			{Field: "status", Header: "Status"},
			{Field: "startdate", Header: "Start Date"},
			{Field: "targetdate", Header: "Target Date"},
			{Field: FieldReferenceID, Header: "Agent"},
		},
		Styles: StyleTable{
			Field: "status",
			Classes: map[string]string{
				"Ongoing": "badge-blue",
				"On Hold": "badge-yellow",
				"Won":     "badge-green",
				"Lost":    "badge-red",
			},
		},
	}
}

func activitySchema() *Schema {
	return &Schema{
		Kind:         KindActivities,
		Title:        "Activities",
		SearchFields: []string{"activitynumber", FieldCompanyName, "contactperson", "quotationnumber", "sonumber"},
		EnumFields: []EnumField{
			{Name: "typeactivity", Label: "Type of Activity", Options: []string{
				"Outbound Calls", "Inbound Calls", "Quotation Preparation", "Sales Order Preparation",
				"Delivered / Closed Transaction", "Client Visit", "Follow Up",
			}},
			{Name: "callstatus", Label: "Call Status", Options: []string{"Successful", "Unsuccessful"}},
			{Name: "activitystatus", Label: "Activity Status", Options: []string{"Cold", "Warm", "Hot", "Done", "Cancelled"}},
		},
		DateField:     FieldDateCreated,
		OwnerField:    FieldReferenceID,
		ManagerField:  FieldManager,
		TSMField:      FieldTSM,
		StatusField:   "activitystatus",
		NumericFields: []string{"quotationamount", "soamount", "actualsales"},
		Required:      []string{FieldCompanyName, "typeactivity"},
		QuickChange:   []string{"activitystatus", "remarks"},
		BulkEditable:  []string{"typeactivity", "remarks"},
		ImportColumns: []string{FieldCompanyName, "contactperson", "typeactivity", "callstatus", "quotationnumber", "quotationamount", "sonumber", "soamount", "activitystatus", "remarks", "startdate", "enddate"},
		ImportConsts:  []string{FieldReferenceID, FieldManager, FieldTSM},
		ExportColumns: []Column{
			{Field: "activitynumber", Header: "Activity Number"},
			{Field: FieldCompanyName, Header: "Company Name"},
			{Field: "contactperson", Header: "Contact Person"},
			{Field: "typeactivity", Header: "Type of Activity"},
			{Field: "callstatus", Header: "Call Status"},
			{Field: "quotationnumber", Header: "Quotation Number"},
			{Field: "quotationamount", Header: "Quotation Amount"},
			{Field: "sonumber", Header: "SO Number"},
			{Field: "soamount", Header: "SO Amount"},
			{Field: "actualsales", Header: "Actual Sales"},
			{Field: "activitystatus", Header: "Activity Status"},
			{Field: "remarks", Header: "Remarks"},
			{Field: "startdate", Header: "Start Date"},
			{Field: "enddate", Header: "End Date"},
			{Field: FieldReferenceID, Header: "Agent"},
		},
		Reference: &ReferenceTemplate{NameField: FieldCompanyName, IDField: FieldReferenceID, Target: "activitynumber"},
		Gate: &FieldGate{
			Selector: "typeactivity",
			Always:   []string{FieldCompanyName, "contactperson", "typeactivity", "activitystatus", "remarks", "startdate", "enddate"},
			Rules: map[string][]string{
				"Outbound Calls":                 {"callstatus", "typecall"},
				"Inbound Calls":                  {"callstatus", "typecall"},
				"Quotation Preparation":          {"quotationnumber", "quotationamount"},
				"Sales Order Preparation":        {"sonumber", "soamount"},
				"Delivered / Closed Transaction": {"sonumber", "actualsales", "deliverydate"},
				"Client Visit":                   {"visitaddress"},
			},
		},
		Styles: StyleTable{
			Field: "activitystatus",
			Classes: map[string]string{
				"Cold":      "badge-blue",
				"Warm":      "badge-yellow",
				"Hot":       "badge-red",
				"Done":      "badge-green",
				"Cancelled": "badge-gray",
			},
		},
	}
}

func inventorySchema() *Schema {
	return &Schema{
		Kind:         KindInventory,
		Title:        "Inventory",
		SearchFields: []string{"productname", "productsku", "description"},
		EnumFields: []EnumField{
			{Name: "category", Label: "Category", Options: []string{"Lighting", "Electrical", "Solar", "Tools", "Accessories"}},
			{Name: "warehouse", Label: "Warehouse", Options: []string{"Main", "North", "South"}},
			{Name: "status", Label: "Status", Options: []string{"In Stock", "Low Stock", "Out of Stock", "Discontinued"}},
		},
		DateField:     FieldDateCreated,
		OwnerField:    FieldReferenceID,
		ManagerField:  FieldManager,
		TSMField:      FieldTSM,
		StatusField:   "status",
		GroupField:    "category",
		NumericFields: []string{"quantity", "unitprice"},
		Required:      []string{"productname", "productsku"},
		QuickChange:   []string{"status"},
		BulkEditable:  []string{"category", "warehouse"},
		ImportColumns: []string{"productname", "productsku", "category", "warehouse", "quantity", "unitprice", "status", "description"},
		ImportConsts:  []string{FieldReferenceID},
		ExportColumns: []Column{
			{Field: "productname", Header: "Product Name"},
			{Field: "productsku", Header: "SKU"},
			{Field: "category", Header: "Category"},
			{Field: "warehouse", Header: "Warehouse"},
			{Field: "quantity", Header: "Quantity"},
			{Field: "unitprice", Header: "Unit Price"},
			{Field: "status", Header: "Status"},
			{Field: "description", Header: "Description"},
		},
		Styles: StyleTable{
			Field: "status",
			Classes: map[string]string{
				"In Stock":     "badge-green",
				"Low Stock":    "badge-yellow",
				"Out of Stock": "badge-red",
				"Discontinued": "badge-gray",
			},
		},
		Attachments: true,
	}
}
