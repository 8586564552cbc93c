package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// Tables whose rows emit change events.
const (
	TableAccounts = "accounts"
	TableBills    = "fixed_bills"
	TableIncome   = "fixed_income"
)

// Row operations.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

var ErrInvalidMessage = errors.New("invalid record change message")

// RecordChangedMessage announces that one row of a user's planning data
// changed. It carries no row contents; consumers re-read what they need.
type RecordChangedMessage struct {
	UserID    string    `json:"user_id"`
	Table     string    `json:"table"`
	RecordID  int64     `json:"record_id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordChangedMessage(userID, table string, recordID int64, op string) *RecordChangedMessage {
	return &RecordChangedMessage{
		UserID:    userID,
		Table:     table,
		RecordID:  recordID,
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
}

func (m *RecordChangedMessage) Validate() error {
	if m.UserID == "" {
		return ErrInvalidMessage
	}
	switch m.Table {
	case TableAccounts, TableBills, TableIncome:
	default:
		return ErrInvalidMessage
	}
	switch m.Op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return ErrInvalidMessage
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangedMessageFromJSON decodes and validates a message.
func RecordChangedMessageFromJSON(data []byte) (*RecordChangedMessage, error) {
	var msg RecordChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
