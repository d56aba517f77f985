// Package parse folds tokenized EDI segment streams into canonical claim and
// payment records. Mapping never fails a whole file: the envelope detector is
// the only stage allowed to declare a file fatal, individual records degrade
// to record_errors, and everything else is a warning annotated in place.
package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/marbhealth/edipipe/internal/config"
	"github.com/marbhealth/edipipe/internal/edi"
	"github.com/marbhealth/edipipe/internal/model"
	"github.com/marbhealth/edipipe/internal/normalize"
)

// FatalError quarantines a file for structural corruption. No canonical
// output exists for a file that produced one.
type FatalError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s: %s", e.FileName, e.Reason)
}

func (e *FatalError) Unwrap() error { return e.Err }

// File parses the file at path into a canonical envelope. The file content
// is hashed for the dedup gate before any mapping happens.
func File(path string, fileType model.FileType, pctx config.ParseContext) (*model.ParsedFileEnvelope, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read edi file: %w", err)
	}
	return Content(content, filepath.Base(path), fileType, pctx)
}

// Content parses raw EDI bytes into a canonical envelope. A *FatalError is
// returned when the interchange envelope cannot yield delimiters; every
// other anomaly degrades to a record_error or warning inside the summary.
func Content(content []byte, fileName string, fileType model.FileType, pctx config.ParseContext) (*model.ParsedFileEnvelope, error) {
	text := string(content)

	delims, err := edi.DetectDelimiters(text)
	if err != nil {
		return nil, &FatalError{FileName: fileName, Reason: err.Error(), Err: err}
	}

	segments := edi.Tokenize(text, delims)

	env := &model.ParsedFileEnvelope{
		FileName: fileName,
		FileType: fileType,
		FileHash: normalize.ContentHash(content),
		Metadata: model.FileMetadata{
			SegmentDelimiter:   string(delims.Segment),
			ElementDelimiter:   string(delims.Element),
			ComponentDelimiter: string(delims.Component),
		},
	}

	sb := newSummaryBuilder()

	switch fileType {
	case model.FileType835:
		env.Payments = mapPayments(segments, fileName, delims, sb)
		env.RecordCount = len(env.Payments)
	default:
		env.Claims = mapClaims(segments, fileName, fileType, delims, pctx, sb, &env.Metadata)
		env.RecordCount = len(env.Claims)
	}

	env.Summary = sb.build()
	return env, nil
}

// summaryBuilder accumulates severity events while mapping. It is the
// in-package severity classifier: fatal aborts before a builder exists,
// recordError skips one record, warn annotates and continues.
type summaryBuilder struct {
	recordErrors int
	warnings     []string
	invalidDates int

	unknownDateQualifiers      map[string]struct{}
	unknownReferenceQualifiers map[string]struct{}
	unknownDiagnosisQualifiers map[string]struct{}
	unknownAdjustmentGroups    map[string]struct{}
	unknownCARCCodes           map[string]struct{}
	unknownClaimStatusCodes    map[string]struct{}
}

func newSummaryBuilder() *summaryBuilder {
	return &summaryBuilder{
		unknownDateQualifiers:      map[string]struct{}{},
		unknownReferenceQualifiers: map[string]struct{}{},
		unknownDiagnosisQualifiers: map[string]struct{}{},
		unknownAdjustmentGroups:    map[string]struct{}{},
		unknownCARCCodes:           map[string]struct{}{},
		unknownClaimStatusCodes:    map[string]struct{}{},
	}
}

func (b *summaryBuilder) recordError() { b.recordErrors++ }

func (b *summaryBuilder) warn(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

func (b *summaryBuilder) invalidDate() { b.invalidDates++ }

func (b *summaryBuilder) build() model.ParseSummary {
	return model.ParseSummary{
		RecordErrors:               b.recordErrors,
		Warnings:                   b.warnings,
		InvalidDates:               b.invalidDates,
		UnknownDateQualifiers:      sortedKeys(b.unknownDateQualifiers),
		UnknownReferenceQualifiers: sortedKeys(b.unknownReferenceQualifiers),
		UnknownDiagnosisQualifiers: sortedKeys(b.unknownDiagnosisQualifiers),
		UnknownAdjustmentGroups:    sortedKeys(b.unknownAdjustmentGroups),
		UnknownCARCCodes:           sortedKeys(b.unknownCARCCodes),
		UnknownClaimStatusCodes:    sortedKeys(b.unknownClaimStatusCodes),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// descOrNil returns a pointer to the known description, or nil for codes the
// lookup does not recognize. Unknown codes keep their raw value in the typed
// code field; only the description is absent.
func descOrNil(desc string, ok bool) *string {
	if !ok {
		return nil
	}
	return &desc
}
