package models

import "time"

// AgentRecord is the relational row behind an Agent profile.
type AgentRecord struct {
	ID        string `gorm:"primaryKey;size:128"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Email     string
	Mobile    string
	LastLogin *time.Time
}

func (AgentRecord) TableName() string { return "agents" }

// RegistrationRecord is one row of an agent's registrations sub-tree.
// The id is unique per agent, so the key is (agent_id, id).
type RegistrationRecord struct {
	AgentID   string `gorm:"primaryKey;size:128"`
	ID        string `gorm:"primaryKey;size:32"`
	CreatedAt time.Time

	CustomerName         string
	ShopName             string
	Phone                string
	Email                string
	GST                  string
	RegistrationDateTime string
	PaymentStatus        string
	DocumentStatus       string
	PaymentScreenshot    string `gorm:"type:text"`
	OtherDocuments       string `gorm:"type:text"`
}

func (RegistrationRecord) TableName() string { return "registrations" }

// Account is an identity-provider login.
type Account struct {
	UID          string `gorm:"primaryKey;size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
}

// Session is a signed-in identity, addressed by an opaque token.
type Session struct {
	Token     string `gorm:"primaryKey;size:64"`
	CreatedAt time.Time
	UID       string    `gorm:"index;size:64"`
	Email     string
	ExpiresAt time.Time `gorm:"index"`
}

// ToRegistration converts a row into the domain value.
func (r RegistrationRecord) ToRegistration() Registration {
	return Registration{
		ID:                   r.ID,
		CustomerName:         r.CustomerName,
		ShopName:             r.ShopName,
		Phone:                r.Phone,
		Email:                r.Email,
		GST:                  r.GST,
		RegistrationDateTime: r.RegistrationDateTime,
		PaymentStatus:        r.PaymentStatus,
		DocumentStatus:       r.DocumentStatus,
		PaymentScreenshot:    r.PaymentScreenshot,
		OtherDocuments:       r.OtherDocuments,
	}
}

// NewRegistrationRecord builds the row for reg under agentID with the given id.
func NewRegistrationRecord(agentID, id string, reg Registration) RegistrationRecord {
	return RegistrationRecord{
		AgentID:              agentID,
		ID:                   id,
		CustomerName:         reg.CustomerName,
		ShopName:             reg.ShopName,
		Phone:                reg.Phone,
		Email:                reg.Email,
		GST:                  reg.GST,
		RegistrationDateTime: reg.RegistrationDateTime,
		PaymentStatus:        reg.PaymentStatus,
		DocumentStatus:       reg.DocumentStatus,
		PaymentScreenshot:    reg.PaymentScreenshot,
		OtherDocuments:       reg.OtherDocuments,
	}
}
