package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vyaparsetu/portal/internal/models"
)

const (
	agentsCollection        = "agents"
	registrationsCollection = "registrations"
)

// agentDoc is the agents/{agentId} document. lastLogin is an ISO-8601 string on the wire.
type agentDoc struct {
	Email     string `firestore:"email,omitempty"`
	Mobile    string `firestore:"mobile,omitempty"`
	LastLogin string `firestore:"lastLogin,omitempty"`
}

// FirestoreStore maps the agents tree onto Firestore: one document per agent
// and a registrations sub-collection beneath it.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreClient creates a Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) agentRef(agentID string) *firestore.DocumentRef {
	return s.client.Collection(agentsCollection).Doc(agentID)
}

func (s *FirestoreStore) FetchAgent(ctx context.Context, agentID string) (*models.Agent, error) {
	if agentID == "" {
		return nil, ErrEmptyID
	}
	ref := s.agentRef(agentID)
	snap, err := ref.Get(ctx)
	found := true
	if status.Code(err) == codes.NotFound {
		found = false
	} else if err != nil {
		return nil, ioErr("fetch agent", err)
	}

	regs, err := readRegistrations(ref.Collection(registrationsCollection).Documents(ctx))
	if err != nil {
		return nil, ioErr("fetch agent", err)
	}
	if !found && len(regs) == 0 {
		return nil, nil
	}

	agent := models.Agent{ID: agentID, Registrations: regs}
	if found {
		var doc agentDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, ioErr("decode agent", err)
		}
		applyAgentDoc(&agent, doc)
	}
	return &agent, nil
}

func (s *FirestoreStore) UpsertAgentProfile(ctx context.Context, agentID string, agent models.Agent) error {
	if agentID == "" {
		return ErrEmptyID
	}
	ref := s.agentRef(agentID)
	regsRef := ref.Collection(registrationsCollection)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(regsRef).GetAll()
		if err != nil {
			return err
		}
		if err := tx.Set(ref, toAgentDoc(agent)); err != nil {
			return err
		}
		for _, doc := range existing {
			if _, keep := agent.Registrations[doc.Ref.ID]; keep {
				continue
			}
			if err := tx.Delete(doc.Ref); err != nil {
				return err
			}
		}
		for _, id := range agent.RegistrationIDs() {
			if err := tx.Set(regsRef.Doc(id), agent.Registrations[id]); err != nil {
				return err
			}
		}
		return nil
	})
	return ioErr("upsert agent", err)
}

func (s *FirestoreStore) AppendRegistration(ctx context.Context, agentID string, reg models.Registration) (string, error) {
	if agentID == "" {
		return "", ErrEmptyID
	}
	id := ulid.Make().String()
	if _, err := s.agentRef(agentID).Collection(registrationsCollection).Doc(id).Create(ctx, reg); err != nil {
		return "", ioErr("append registration", err)
	}
	return id, nil
}

func (s *FirestoreStore) DeleteRegistration(ctx context.Context, agentID, regID string) error {
	if agentID == "" || regID == "" {
		return ErrEmptyID
	}
	_, err := s.agentRef(agentID).Collection(registrationsCollection).Doc(regID).Delete(ctx)
	return ioErr("delete registration", err)
}

func (s *FirestoreStore) UpdateAgentField(ctx context.Context, agentID string, patch models.AgentPatch) error {
	if agentID == "" {
		return ErrEmptyID
	}
	if patch.IsEmpty() {
		return nil
	}
	fields := map[string]any{}
	if patch.Email != nil {
		fields["email"] = *patch.Email
	}
	if patch.Mobile != nil {
		fields["mobile"] = *patch.Mobile
	}
	if patch.LastLogin != nil {
		fields["lastLogin"] = patch.LastLogin.UTC().Format(time.RFC3339Nano)
	}
	_, err := s.agentRef(agentID).Set(ctx, fields, firestore.MergeAll)
	return ioErr("update agent", err)
}

func (s *FirestoreStore) ListAgents(ctx context.Context) (map[string]models.Agent, error) {
	// DocumentRefs also yields agents that only exist through their sub-collection.
	refs, err := s.client.Collection(agentsCollection).DocumentRefs(ctx).GetAll()
	if err != nil {
		return nil, ioErr("list agents", err)
	}

	agents := make([]models.Agent, len(refs))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(10)
	for i, ref := range refs {
		i, ref := i, ref
		eg.Go(func() error {
			a, err := s.FetchAgent(gctx, ref.ID)
			if err != nil {
				return err
			}
			if a == nil {
				a = &models.Agent{ID: ref.ID, Registrations: map[string]models.Registration{}}
			}
			agents[i] = *a
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, ioErr("list agents", err)
	}

	out := make(map[string]models.Agent, len(agents))
	for _, a := range agents {
		out[a.ID] = a
	}
	return out, nil
}

func (s *FirestoreStore) SubscribeRegistrations(ctx context.Context, agentID string) (*Subscription, error) {
	if agentID == "" {
		return nil, ErrEmptyID
	}
	sub := newSubscription(ctx)
	it := s.agentRef(agentID).Collection(registrationsCollection).Snapshots(sub.ctx)
	go func() {
		defer sub.finish()
		defer it.Stop()
		for {
			qs, err := it.Next()
			if sub.ctx.Err() != nil {
				return
			}
			if err != nil {
				sub.send(Snapshot{Err: ioErr("subscription", err)})
				return
			}
			regs, err := readRegistrations(qs.Documents)
			if err != nil {
				sub.send(Snapshot{Err: ioErr("subscription", err)})
				return
			}
			if !sub.send(Snapshot{Registrations: regs}) {
				return
			}
		}
	}()
	return sub, nil
}

func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.client.Collection(agentsCollection).Limit(1).Documents(ctx).GetAll()
	return ioErr("ping", err)
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func readRegistrations(it *firestore.DocumentIterator) (map[string]models.Registration, error) {
	defer it.Stop()
	out := map[string]models.Registration{}
	for {
		doc, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		var reg models.Registration
		if err := doc.DataTo(&reg); err != nil {
			return nil, fmt.Errorf("decode registration %s: %w", doc.Ref.ID, err)
		}
		reg.ID = doc.Ref.ID
		out[doc.Ref.ID] = reg
	}
	return out, nil
}

func toAgentDoc(a models.Agent) agentDoc {
	doc := agentDoc{Email: a.Email, Mobile: a.Mobile}
	if a.LastLogin != nil {
		doc.LastLogin = a.LastLogin.UTC().Format(time.RFC3339Nano)
	}
	return doc
}

func applyAgentDoc(a *models.Agent, doc agentDoc) {
	a.Email = doc.Email
	a.Mobile = doc.Mobile
	if doc.LastLogin != "" {
		if t, err := time.Parse(time.RFC3339Nano, doc.LastLogin); err == nil {
			a.LastLogin = &t
		}
	}
}
