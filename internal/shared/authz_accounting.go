package shared

// Accounting permissions declared for RBAC. Each core operation checks one of
// these capabilities explicitly instead of relying on database row policies.
const (
	PermCoaView       = "accounting.coa.view"
	PermCoaEdit       = "accounting.coa.edit"
	PermJournalView   = "accounting.journal.view"
	PermJournalPost   = "accounting.journal.post"
	PermJournalCancel = "accounting.journal.cancel"
	PermReportsView   = "accounting.reports.view"
	PermFECExport     = "accounting.fec.export"
	PermFiscalClose   = "accounting.fiscalyear.close"
)

// AccountingScopes lists all permissions related to the accounting module.
func AccountingScopes() []string {
	return []string{
		PermCoaView,
		PermCoaEdit,
		PermJournalView,
		PermJournalPost,
		PermJournalCancel,
		PermReportsView,
		PermFECExport,
		PermFiscalClose,
	}
}
