package inbucket

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MessageHeader is the summary Inbucket returns for each message in a
// mailbox listing and pushes over the monitor socket.
type MessageHeader struct {
	Mailbox     string    `json:"mailbox"`
	ID          string    `json:"id"`
	From        string    `json:"from"`
	To          []string  `json:"to"`
	Subject     string    `json:"subject"`
	Date        time.Time `json:"date"`
	PosixMillis int64     `json:"posix-millis"`
	Size        int64     `json:"size"`
	Seen        bool      `json:"seen"`
}

// Body holds both renditions of a message body; either may be empty.
type Body struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

type Attachment struct {
	Filename     string `json:"filename"`
	ContentType  string `json:"content-type"`
	DownloadLink string `json:"download-link"`
	ViewLink     string `json:"view-link"`
	MD5          string `json:"md5"`
}

// Message is a fully fetched message.
type Message struct {
	MessageHeader
	Header      map[string][]string `json:"header"`
	Body        Body                `json:"body"`
	Attachments []Attachment        `json:"attachments"`
}

// ServerConfig mirrors /serve/status.
type ServerConfig struct {
	Version       string        `json:"version"`
	BuildDate     string        `json:"build-date"`
	POP3Listener  string        `json:"pop3-listener"`
	WebListener   string        `json:"web-listener"`
	SMTPConfig    SMTPConfig    `json:"smtp-config"`
	StorageConfig StorageConfig `json:"storage-config"`
}

type SMTPConfig struct {
	Addr           string   `json:"addr"`
	DefaultAccept  bool     `json:"default-accept"`
	AcceptDomains  []string `json:"accept-domains"`
	RejectDomains  []string `json:"reject-domains"`
	DefaultStore   bool     `json:"default-store"`
	StoreDomains   []string `json:"store-domains"`
	DiscardDomains []string `json:"discard-domains"`
}

type StorageConfig struct {
	Type                string `json:"type"`
	RetentionPeriod     string `json:"retention-period"`
	RetentionScanPeriod string `json:"retention-scan-period"`
	MailboxMsgCap       int    `json:"mailbox-msg-cap"`
}

// Metrics is the raw expvar document served at /debug/vars.
type Metrics map[string]json.RawMessage

// Lookup walks nested objects by key and renders the leaf value.
func (m Metrics) Lookup(path ...string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	raw, ok := m[path[0]]
	if !ok {
		return "", false
	}
	for _, key := range path[1:] {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return "", false
		}
		if raw, ok = obj[key]; !ok {
			return "", false
		}
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val)), true
		}
		return fmt.Sprintf("%g", val), true
	case bool:
		return fmt.Sprintf("%t", val), true
	case nil:
		return "", false
	default:
		return strings.TrimSpace(string(raw)), true
	}
}

// ServerStatus bundles everything the status page shows.
type ServerStatus struct {
	Config  ServerConfig
	Metrics Metrics
}
