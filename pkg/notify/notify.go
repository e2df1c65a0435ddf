// Package notify sends best-effort email alerts for pipeline events. A
// notification failure is logged and never fails the pipeline.
package notify

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sgl-project/modelcost/pkg/logging"
)

// SubjectPrefix tags every notification subject.
const SubjectPrefix = "[coding-model-seeks-gpu]"

const (
	defaultSMTPHost = "smtp.gmail.com"
	defaultSMTPPort = 587
)

// Config holds the SMTP credentials. Notifications are disabled unless all
// three of user, password and recipient are set.
type Config struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	NotifyTo     string `mapstructure:"notify_to"`
}

// Notifier sends pipeline alerts over SMTP.
type Notifier struct {
	config Config
	logger logging.Interface
	send   func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NotifierOption customizes a Notifier.
type NotifierOption func(*Notifier)

// WithSendFunc replaces the SMTP transport, mainly for tests.
func WithSendFunc(send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error) NotifierOption {
	return func(n *Notifier) { n.send = send }
}

// NewNotifier builds a notifier. Host and port default to Gmail submission.
func NewNotifier(config Config, logger logging.Interface, opts ...NotifierOption) *Notifier {
	if config.SMTPHost == "" {
		config.SMTPHost = defaultSMTPHost
	}
	if config.SMTPPort == 0 {
		config.SMTPPort = defaultSMTPPort
	}
	n := &Notifier{config: config, logger: logger, send: smtp.SendMail}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Enabled reports whether the notifier has enough configuration to send.
func (n *Notifier) Enabled() bool {
	return n.config.SMTPUser != "" && n.config.SMTPPassword != "" && n.config.NotifyTo != ""
}

// SendEmail sends one message, prefixing the subject. Failures are logged
// and swallowed.
func (n *Notifier) SendEmail(subject, body string) {
	if !n.Enabled() {
		return
	}
	fullSubject := SubjectPrefix + " " + subject

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", n.config.SMTPUser)
	fmt.Fprintf(&msg, "To: %s\r\n", n.config.NotifyTo)
	fmt.Fprintf(&msg, "Subject: %s\r\n", fullSubject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", n.config.SMTPHost, n.config.SMTPPort)
	auth := smtp.PlainAuth("", n.config.SMTPUser, n.config.SMTPPassword, n.config.SMTPHost)
	if err := n.send(addr, auth, n.config.SMTPUser, []string{n.config.NotifyTo}, []byte(msg.String())); err != nil {
		n.logger.WithError(err).Warnf("Failed to send email: %s", fullSubject)
		return
	}
	n.logger.Infof("Sent email: %s", fullSubject)
}

// NotifyUnsupportedArchitecture alerts that a model's HF architecture is not
// yet supported and was skipped.
func (n *Notifier) NotifyUnsupportedArchitecture(modelName, modelType, hfID string) {
	n.SendEmail(
		fmt.Sprintf("Unsupported architecture for %s", modelName),
		fmt.Sprintf(
			"The model '%s' (%s) has model_type='%s' which is not a supported architecture.\n\n"+
				"The model was skipped during enrichment. Please add support for this "+
				"architecture so the pipeline can include it.",
			modelName, hfID, modelType),
	)
}

// NotifyMissingMapping alerts that a benchmark model has no HuggingFace repo
// mapping.
func (n *Notifier) NotifyMissingMapping(modelName string) {
	n.SendEmail(
		fmt.Sprintf("Missing HuggingFace mapping for %s", modelName),
		fmt.Sprintf(
			"The model '%s' appeared in the OpenHands Index benchmarks but has no "+
				"HuggingFace repository mapping.\n\n"+
				"Please add a mapping so the pipeline can fetch its HuggingFace config.",
			modelName),
	)
}

// NotifyFailure alerts that the pipeline failed after all retries.
func (n *Notifier) NotifyFailure(err error) {
	n.SendEmail(
		"Pipeline failed",
		fmt.Sprintf("The pipeline failed after all retry attempts.\n\nError: %v", err),
	)
}

// NotifyBreakingFormatChange alerts that an upstream source changed its data
// format.
func (n *Notifier) NotifyBreakingFormatChange(source, details string) {
	n.SendEmail(
		"Data format breaking change",
		fmt.Sprintf(
			"A breaking change was detected in the data format from '%s'.\n\n"+
				"Details:\n%s\n\n"+
				"The pipeline cannot process data from this source until the code is "+
				"updated to handle the new format.",
			source, details),
	)
}

// NotifyDataUpdated summarizes what changed in a successful run.
func (n *Notifier) NotifyDataUpdated(updates []string) {
	var body strings.Builder
	body.WriteString("The pipeline completed successfully. Updates:\n\n")
	for _, update := range updates {
		fmt.Fprintf(&body, "  - %s\n", update)
	}
	n.SendEmail("Source data updated", strings.TrimRight(body.String(), "\n"))
}
