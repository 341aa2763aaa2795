package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/nhle/led-repair/internal/model"
)

// Draft is an unsent mail message carrying an exported quotation.
type Draft struct {
	From       string
	To         string
	Subject    string
	Body       string
	Attachment string
	Date       time.Time
}

// NewDraft prepares a draft dated date for the quotation exported to
// attachment.
func NewDraft(meta model.QuotationMeta, total int, attachment, from, to string, date time.Time) Draft {
	subject := "Quotation " + meta.QuotationID
	if meta.ProjectName != "" {
		subject += " - " + meta.ProjectName
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Please find attached quotation %s.\r\n\r\n", meta.QuotationID)
	if meta.ProjectName != "" {
		fmt.Fprintf(&body, "Project: %s\r\n", meta.ProjectName)
	}
	if meta.ProjectCode != "" {
		fmt.Fprintf(&body, "Project code: %s\r\n", meta.ProjectCode)
	}
	fmt.Fprintf(&body, "Total repair modules: %d pcs\r\n", total)

	return Draft{
		From:       from,
		To:         to,
		Subject:    subject,
		Body:       body.String(),
		Attachment: attachment,
		Date:       date,
	}
}

// attachmentTypes maps export extensions to MIME types.
var attachmentTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".csv":  "text/csv",
	".txt":  "text/plain",
}

// WriteDraft writes d as an RFC 5322 message marked X-Unsent so desktop mail
// clients open it for editing.
func WriteDraft(w io.Writer, d Draft) error {
	var h mail.Header
	h.SetDate(d.Date)
	h.SetSubject(d.Subject)
	h.Set("X-Unsent", "1")

	if d.From != "" {
		from, err := mail.ParseAddressList(d.From)
		if err != nil {
			return fmt.Errorf("parsing from address %q: %w", d.From, err)
		}
		h.SetAddressList("From", from)
	}
	if d.To != "" {
		to, err := mail.ParseAddressList(d.To)
		if err != nil {
			return fmt.Errorf("parsing to address %q: %w", d.To, err)
		}
		h.SetAddressList("To", to)
	}

	var data []byte
	if d.Attachment != "" {
		var err error
		data, err = os.ReadFile(d.Attachment)
		if err != nil {
			return fmt.Errorf("reading attachment: %w", err)
		}
	}

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return fmt.Errorf("creating message: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return fmt.Errorf("creating body: %w", err)
	}
	var th mail.InlineHeader
	th.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	pw, err := tw.CreatePart(th)
	if err != nil {
		return fmt.Errorf("creating body part: %w", err)
	}
	if _, err := io.WriteString(pw, d.Body); err != nil {
		return fmt.Errorf("writing body: %w", err)
	}
	if err := pw.Close(); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}

	if d.Attachment != "" {
		contentType, ok := attachmentTypes[strings.ToLower(filepath.Ext(d.Attachment))]
		if !ok {
			contentType = "application/octet-stream"
		}
		var ah mail.AttachmentHeader
		ah.SetContentType(contentType, nil)
		ah.SetFilename(filepath.Base(d.Attachment))

		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return fmt.Errorf("creating attachment: %w", err)
		}
		if _, err := aw.Write(data); err != nil {
			return fmt.Errorf("writing attachment: %w", err)
		}
		if err := aw.Close(); err != nil {
			return err
		}
	}

	return mw.Close()
}

// SaveDraft writes d to path as an .eml file, replacing it atomically.
func SaveDraft(path string, d Draft) error {
	return writeAtomic(path, func(w io.Writer) error {
		return WriteDraft(w, d)
	})
}
