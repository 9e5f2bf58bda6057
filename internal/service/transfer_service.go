package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/pkg/util"
)

// TransferService implements the import/export engine on top of the
// lifecycle engine, which stays the only owner of snapshot mutation.
type TransferService struct {
	lifecycle *LifecycleService
}

// NewTransferService constructs the service.
func NewTransferService(lifecycle *LifecycleService) *TransferService {
	return &TransferService{lifecycle: lifecycle}
}

// ExportDocument is a downloadable artifact.
type ExportDocument struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportSnapshot serializes the complete snapshot verbatim.
func (s *TransferService) ExportSnapshot() (ExportDocument, error) {
	snap := s.lifecycle.Snapshot()
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return ExportDocument{}, util.NewInternalError(err)
	}
	return ExportDocument{
		Filename:    fmt.Sprintf("ticketflow_backup_%s.json", time.Now().UTC().Format("2006-01-02")),
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// ExportCSV projects every ticket into one flat row. Text fields are quoted
// and internal quotes doubled by the csv writer.
func (s *TransferService) ExportCSV() (ExportDocument, error) {
	tickets := s.lifecycle.Tickets()
	if len(tickets) == 0 {
		return ExportDocument{}, util.NewValidationError("no tickets to export", nil)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"ID", "Numero", "Titulo", "Prioridad", "Estado", "Creador", "Tema",
		"Fecha Creacion", "Fecha Resolucion", "Nota Resolucion", "Descripcion",
		"Comentarios (Conteo)",
	}
	if err := w.Write(header); err != nil {
		return ExportDocument{}, util.NewInternalError(err)
	}
	for _, t := range tickets {
		resolvedAt := ""
		if t.ResolvedAt > 0 {
			resolvedAt = formatMillis(t.ResolvedAt)
		}
		row := []string{
			t.ID,
			strconv.Itoa(t.Number),
			t.Title,
			string(t.Priority),
			string(t.Status),
			t.CreatorName,
			string(t.Topic),
			formatMillis(t.CreatedAt),
			resolvedAt,
			t.ResolutionNote,
			t.Description,
			strconv.Itoa(len(t.Comments)),
		}
		if err := w.Write(row); err != nil {
			return ExportDocument{}, util.NewInternalError(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return ExportDocument{}, util.NewInternalError(err)
	}

	return ExportDocument{
		Filename:    fmt.Sprintf("wTicketFlow_Report_%s.csv", time.Now().UTC().Format("2006-01-02")),
		ContentType: "text/csv",
		Body:        buf.Bytes(),
	}, nil
}

// importDocument keeps collections raw so a malformed users/subjects section
// degrades to an empty collection instead of rejecting the whole document.
type importDocument struct {
	Tickets  json.RawMessage `json:"tickets"`
	Users    json.RawMessage `json:"users"`
	Subjects json.RawMessage `json:"subjects"`
}

// Import validates an externally supplied document and replaces the entire
// snapshot with it. Malformed JSON or a missing tickets collection rejects
// the import and leaves current state untouched.
func (s *TransferService) Import(ctx context.Context, raw []byte) (domain.Snapshot, error) {
	var doc importDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Snapshot{}, util.NewValidationError("document is not valid JSON", nil)
	}
	if len(doc.Tickets) == 0 {
		return domain.Snapshot{}, util.NewValidationError("document has no tickets collection", nil)
	}

	var tickets []domain.Ticket
	if err := json.Unmarshal(doc.Tickets, &tickets); err != nil || tickets == nil {
		return domain.Snapshot{}, util.NewValidationError("tickets collection is malformed", nil)
	}

	// Soft migration for older export formats.
	users := []domain.User{}
	if len(doc.Users) > 0 {
		if err := json.Unmarshal(doc.Users, &users); err != nil || users == nil {
			users = []domain.User{}
		}
	}
	subjects := []domain.Subject{}
	if len(doc.Subjects) > 0 {
		if err := json.Unmarshal(doc.Subjects, &subjects); err != nil || subjects == nil {
			subjects = []domain.Subject{}
		}
	}

	return s.lifecycle.ReplaceSnapshot(ctx, domain.Snapshot{
		Tickets:  tickets,
		Users:    users,
		Subjects: subjects,
	})
}

func formatMillis(millis int64) string {
	return time.UnixMilli(millis).UTC().Format("2006-01-02 15:04:05")
}
