package listeners

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"io"
	"os"
	"strings"
	"time"

	mail "github.com/go-mail/mail/v2"

	"github.com/netresearch/chronos/core"
)

// MailConfig configures a Mail listener, grounded on the teacher's
// middlewares/mail.go MailConfig.
type MailConfig struct {
	Name              string `default:"mail"`
	SMTPHost          string
	SMTPPort          int `default:"587"`
	SMTPUser          string
	SMTPPassword      string
	SMTPTLSSkipVerify bool
	EmailTo           string
	EmailFrom         string
	EmailSubject      string
	OnlyOnError       bool `default:"true"`

	subjectTemplate *template.Template
}

// Mail is a JobListener that emails a report after each execution,
// optionally attaching captured stdout/stderr.
type Mail struct {
	cfg    MailConfig
	logger core.Logger
}

// NewMail builds a Mail listener. c.EmailSubject, when set, is parsed as an
// html/template with a "status" helper; on parse failure the built-in
// subject template is used instead.
func NewMail(c MailConfig, logger core.Logger) (*Mail, error) {
	if c.SMTPHost == "" {
		return nil, fmt.Errorf("mail %q: smtp host is required", c.Name)
	}
	if c.EmailSubject != "" {
		tmpl := template.New("custom-mail-subject")
		tmpl.Funcs(map[string]any{"status": executionLabel})
		if parsed, err := tmpl.Parse(c.EmailSubject); err == nil {
			c.subjectTemplate = parsed
		}
	}
	return &Mail{cfg: c, logger: logger}, nil
}

// Name implements core.JobListener.
func (m *Mail) Name() string { return "mail:" + m.cfg.Name }

// JobToBeExecuted implements core.JobListener.
func (m *Mail) JobToBeExecuted(*core.JobExecutionContext) {}

// JobWasExecuted implements core.JobListener: sends the report email.
func (m *Mail) JobWasExecuted(jec *core.JobExecutionContext, jobErr error) {
	if m.cfg.OnlyOnError && jobErr == nil {
		return
	}
	if err := m.send(jec, jobErr); err != nil && m.logger != nil {
		m.logger.Errorf("mail %s: %v", m.cfg.Name, err)
	}
}

func (m *Mail) send(jec *core.JobExecutionContext, jobErr error) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from())
	msg.SetHeader("To", strings.Split(m.cfg.EmailTo, ",")...)
	msg.SetHeader("Subject", m.subject(jec, jobErr))
	msg.SetBody("text/html", m.body(jec, jobErr))

	base := fmt.Sprintf("%s_%s", jec.JobDetail.Key.String(), jec.FireInstanceID)

	if out := jec.Stdout(); len(out) > 0 {
		msg.Attach(base+".stdout.log", mail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(out)
			return err
		}))
	}
	if errOut := jec.Stderr(); len(errOut) > 0 {
		msg.Attach(base+".stderr.log", mail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(errOut)
			return err
		}))
	}

	d := mail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPassword)
	if m.cfg.SMTPTLSSkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("dial and send mail: %w", err)
	}
	return nil
}

func (m *Mail) from() string {
	if !strings.Contains(m.cfg.EmailFrom, "%") {
		return m.cfg.EmailFrom
	}
	hostname, _ := os.Hostname()
	return fmt.Sprintf(m.cfg.EmailFrom, hostname)
}

func (m *Mail) subject(jec *core.JobExecutionContext, jobErr error) string {
	buf := bytes.NewBuffer(nil)
	tmpl := mailSubjectTemplate
	if m.cfg.subjectTemplate != nil {
		tmpl = m.cfg.subjectTemplate
	}
	_ = tmpl.Execute(buf, reportView(jec, jobErr))
	return buf.String()
}

func (m *Mail) body(jec *core.JobExecutionContext, jobErr error) string {
	buf := bytes.NewBuffer(nil)
	_ = mailBodyTemplate.Execute(buf, reportView(jec, jobErr))
	return buf.String()
}

type mailReport struct {
	Key      string
	Status   string
	Duration time.Duration
}

func reportView(jec *core.JobExecutionContext, jobErr error) mailReport {
	return mailReport{
		Key:      jec.JobDetail.Key.String(),
		Status:   executionLabel(jobErr),
		Duration: time.Since(jec.FireTime),
	}
}

var mailBodyTemplate, mailSubjectTemplate *template.Template

func init() {
	mailBodyTemplate = template.New("mail-body")
	mailSubjectTemplate = template.New("mail-subject")

	template.Must(mailBodyTemplate.Parse(`
		<p>
			Job <b>{{.Key}}</b>,
			execution <b>{{.Status}}</b> in <b>{{.Duration}}</b>
		</p>
	`))
	template.Must(mailSubjectTemplate.Parse(
		"[Execution {{.Status}}] Job {{.Key}} finished in {{.Duration}}",
	))
}

func executionLabel(jobErr error) string {
	if jobErr != nil {
		return "failed"
	}
	return "successful"
}
