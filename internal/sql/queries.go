package sql

import (
	_ "embed"
)

//go:embed queries/register_file.sql
var RegisterFile string

//go:embed queries/select_file_by_hash.sql
var SelectFileByHash string

//go:embed queries/reset_file_status.sql
var ResetFileStatus string

//go:embed queries/quarantine_file.sql
var QuarantineFile string

//go:embed queries/finalize_file.sql
var FinalizeFile string

//go:embed queries/select_claim_header.sql
var SelectClaimHeader string

//go:embed queries/insert_claim_header.sql
var InsertClaimHeader string

//go:embed queries/update_claim_header.sql
var UpdateClaimHeader string

//go:embed queries/update_claim_header_payment.sql
var UpdateClaimHeaderPayment string

//go:embed queries/delete_claim_children.sql
var DeleteClaimChildren string

//go:embed queries/insert_claim_line.sql
var InsertClaimLine string

//go:embed queries/lookup_claim_by_id.sql
var LookupClaimByID string

//go:embed queries/lookup_claim_by_original_id.sql
var LookupClaimByOriginalID string

//go:embed queries/lookup_claim_refs.sql
var LookupClaimRefs string

//go:embed queries/select_claim_payment.sql
var SelectClaimPayment string

//go:embed queries/insert_claim_payment.sql
var InsertClaimPayment string

//go:embed queries/update_claim_payment.sql
var UpdateClaimPayment string

//go:embed queries/delete_payment_children.sql
var DeletePaymentChildren string

//go:embed queries/insert_claim_payment_line.sql
var InsertClaimPaymentLine string

//go:embed queries/audit_claim_header_dupes.sql
var AuditClaimHeaderDupes string

//go:embed queries/audit_claim_payment_dupes.sql
var AuditClaimPaymentDupes string

//go:embed queries/audit_orphans.sql
var AuditOrphans string

//go:embed queries/enforce_claim_header_unique.sql
var EnforceClaimHeaderUnique string

//go:embed queries/enforce_claim_payment_unique.sql
var EnforceClaimPaymentUnique string

//go:embed queries/cleanup_claim_header_dupes.sql
var CleanupClaimHeaderDupes string

//go:embed queries/cleanup_claim_payment_dupes.sql
var CleanupClaimPaymentDupes string
