// Package fieldlocks configures which record form fields a group may fill
// in. The field registry is fixed and enumerated; submissions referencing an
// unknown field name are rejected rather than silently stored.
package fieldlocks

// AvailableFields enumerates every writable record field, keyed by field
// name with a human label for the admin screen.
var AvailableFields = map[string]string{
	// Main report information.
	"rnc_number":  "Report Number",
	"title":       "Title",
	"equipment":   "Equipment / System",
	"client":      "Client / Department",
	"description": "Non-Conformance Description",

	// Technical product data.
	"mp":             "Raw Material",
	"revision":       "Revision",
	"position":       "Position",
	"assembly":       "Assembly",
	"model":          "Model",
	"quantity":       "Quantity",
	"material":       "Material",
	"drawing":        "Drawing",
	"purchase_order": "Purchase Order",

	// Responsibilities.
	"responsible":    "Detection Responsible",
	"inspector":      "Inspector",
	"sector":         "Sector",
	"area_in_charge": "Area In Charge",

	// Signatures.
	"signature_inspection_name":  "Signature: Inspection",
	"signature_engineering_name": "Signature: Engineering",
	"signature_leader_name":      "Signature: Leader",

	// Analysis.
	"rework_instruction": "Rework Instruction",
	"cause":              "Root Cause",
	"action":             "Corrective Action",

	// Disposition of the non-conforming material.
	"disposition_use_as_is":       "Disposition: Use As Is",
	"disposition_rework":          "Disposition: Rework",
	"disposition_reject":          "Disposition: Reject",
	"disposition_scrap":           "Disposition: Scrap",
	"disposition_return_stock":    "Disposition: Return To Stock",
	"disposition_return_supplier": "Disposition: Return To Supplier",

	// Administrative fields.
	"priority":         "Priority",
	"status":           "Status",
	"assigned_user_id": "Assigned User",
	"price":            "Estimated Cost",
	"justification":    "Justification",
}

// KnownField reports whether name belongs to the registry.
func KnownField(name string) bool {
	_, ok := AvailableFields[name]
	return ok
}
