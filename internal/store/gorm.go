package store

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vyaparsetu/portal/internal/events"
	"github.com/vyaparsetu/portal/internal/models"
)

// GormStore keeps the agents tree in two relational tables and announces
// every committed write on the broker so live subscriptions can re-read.
type GormStore struct {
	db     *gorm.DB
	broker events.Broker
	logger zerolog.Logger
}

// NewGormStore wraps an already migrated connection.
func NewGormStore(db *gorm.DB, broker events.Broker, logger zerolog.Logger) *GormStore {
	if broker == nil {
		broker = events.NewLocalBroker()
	}
	return &GormStore{db: db, broker: broker, logger: logger.With().Str("component", "store").Logger()}
}

func (s *GormStore) FetchAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	if agentID == "" {
		return nil, ErrEmptyID
	}
	var rec models.AgentRecord
	found := true
	err := s.db.WithContext(ctx).Where("id = ?", agentID).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		found = false
		rec = models.AgentRecord{ID: agentID}
	} else if err != nil {
		return nil, ioErr("fetch agent", err)
	}

	regs, err := s.registrations(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !found && len(regs) == 0 {
		return nil, nil
	}

	agent := toAgent(rec)
	agent.Registrations = regs
	return &agent, nil
}

func (s *GormStore) UpsertAgentProfile(ctx context.Context, agentID string, agent models.Agent) error {
	if agentID == "" {
		return ErrEmptyID
	}
	rec := models.AgentRecord{
		ID:        agentID,
		Email:     agent.Email,
		Mobile:    agent.Mobile,
		LastLogin: agent.LastLogin,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "mobile", "last_login", "updated_at"}),
		}).Create(&rec).Error; err != nil {
			return err
		}
		if err := tx.Where("agent_id = ?", agentID).Delete(&models.RegistrationRecord{}).Error; err != nil {
			return err
		}
		if len(agent.Registrations) == 0 {
			return nil
		}
		rows := make([]models.RegistrationRecord, 0, len(agent.Registrations))
		for _, id := range agent.RegistrationIDs() {
			rows = append(rows, models.NewRegistrationRecord(agentID, id, agent.Registrations[id]))
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return ioErr("upsert agent", err)
	}
	s.publish(ctx, agentID)
	return nil
}

func (s *GormStore) AppendRegistration(ctx context.Context, agentID string, reg models.Registration) (string, error) {
	if agentID == "" {
		return "", ErrEmptyID
	}
	id := ulid.Make().String()
	row := models.NewRegistrationRecord(agentID, id, reg)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the parent record exists implicitly once it has a child
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.AgentRecord{ID: agentID}).Error; err != nil {
			return err
		}
		return tx.Create(&row).Error
	})
	if err != nil {
		return "", ioErr("append registration", err)
	}
	s.publish(ctx, agentID)
	return id, nil
}

func (s *GormStore) DeleteRegistration(ctx context.Context, agentID, regID string) error {
	if agentID == "" || regID == "" {
		return ErrEmptyID
	}
	res := s.db.WithContext(ctx).
		Where("agent_id = ? AND id = ?", agentID, regID).
		Delete(&models.RegistrationRecord{})
	if res.Error != nil {
		return ioErr("delete registration", res.Error)
	}
	if res.RowsAffected > 0 {
		s.publish(ctx, agentID)
	}
	return nil
}

func (s *GormStore) UpdateAgentField(ctx context.Context, agentID string, patch models.AgentPatch) error {
	if agentID == "" {
		return ErrEmptyID
	}
	if patch.IsEmpty() {
		return nil
	}
	updates := map[string]any{"updated_at": time.Now()}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.Mobile != nil {
		updates["mobile"] = *patch.Mobile
	}
	if patch.LastLogin != nil {
		updates["last_login"] = *patch.LastLogin
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.AgentRecord{ID: agentID}).Error; err != nil {
			return err
		}
		return tx.Model(&models.AgentRecord{}).Where("id = ?", agentID).Updates(updates).Error
	})
	if err != nil {
		return ioErr("update agent", err)
	}
	s.publish(ctx, agentID)
	return nil
}

func (s *GormStore) ListAgents(ctx context.Context) (map[string]models.Agent, error) {
	var recs []models.AgentRecord
	if err := s.db.WithContext(ctx).Order("id asc").Find(&recs).Error; err != nil {
		return nil, ioErr("list agents", err)
	}
	var rows []models.RegistrationRecord
	if err := s.db.WithContext(ctx).Order("agent_id asc, id asc").Find(&rows).Error; err != nil {
		return nil, ioErr("list registrations", err)
	}

	out := make(map[string]models.Agent, len(recs))
	for _, rec := range recs {
		a := toAgent(rec)
		a.Registrations = map[string]models.Registration{}
		out[rec.ID] = a
	}
	for _, row := range rows {
		a, ok := out[row.AgentID]
		if !ok {
			a = models.Agent{ID: row.AgentID, Registrations: map[string]models.Registration{}}
			out[row.AgentID] = a
		}
		a.Registrations[row.ID] = row.ToRegistration()
	}
	return out, nil
}

func (s *GormStore) SubscribeRegistrations(ctx context.Context, agentID string) (*Subscription, error) {
	if agentID == "" {
		return nil, ErrEmptyID
	}
	changes, stop, err := s.broker.Subscribe(ctx, agentID)
	if err != nil {
		return nil, ioErr("subscribe", err)
	}

	sub := newSubscription(ctx)
	go func() {
		defer sub.finish()
		defer stop()
		for {
			regs, err := s.registrations(sub.ctx, agentID)
			if sub.ctx.Err() != nil {
				return
			}
			if !sub.send(Snapshot{Registrations: regs, Err: err}) || err != nil {
				return
			}
			select {
			case <-sub.ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
			}
		}
	}()
	return sub, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return ioErr("ping", err)
	}
	return ioErr("ping", sqlDB.PingContext(ctx))
}

// Close releases the broker; the gorm connection belongs to the caller.
func (s *GormStore) Close() error {
	return s.broker.Close()
}

func (s *GormStore) registrations(ctx context.Context, agentID string) (map[string]models.Registration, error) {
	var rows []models.RegistrationRecord
	if err := s.db.WithContext(ctx).Where("agent_id = ?", agentID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, ioErr("read registrations", err)
	}
	out := make(map[string]models.Registration, len(rows))
	for _, row := range rows {
		out[row.ID] = row.ToRegistration()
	}
	return out, nil
}

// publish is best effort: the write already committed, a lost notification
// only delays live views until the next change.
func (s *GormStore) publish(ctx context.Context, agentID string) {
	if err := s.broker.Publish(ctx, agentID); err != nil {
		s.logger.Warn().Err(err).Str("agent_id", agentID).Msg("change notification failed")
	}
}

func toAgent(rec models.AgentRecord) models.Agent {
	return models.Agent{
		ID:        rec.ID,
		Email:     rec.Email,
		Mobile:    rec.Mobile,
		LastLogin: rec.LastLogin,
	}
}
