package zones

import (
	"context"
	"errors"
	"fmt"
	"net"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/leozw/pdns-rest/internal/core"
	"github.com/leozw/pdns-rest/internal/metrics"
)

// Store is the persistence the service needs. Lookups that match nothing
// return core.ErrNotFound.
type Store interface {
	FindDomainByName(ctx context.Context, name string) (*core.Domain, error)
	CreateDomain(ctx context.Context, domain *core.Domain) error
	SetDomainType(ctx context.Context, id int64, domainType string) error
	ListRecords(ctx context.Context, domainID int64) ([]*core.Record, error)
	BeginRecords(ctx context.Context, domainID int64) (core.RecordTx, error)
	UpsertSupermaster(ctx context.Context, sm *core.Supermaster) error
	ListSupermasters(ctx context.Context) ([]*core.Supermaster, error)
	Ping(ctx context.Context) error
}

type Service struct {
	store   Store
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewService(store Store, logger *zap.Logger, metrics *metrics.Collector) *Service {
	return &Service{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// UpdateDomain creates the named domain, or sets the type of the existing
// one. The lookup by name is what keeps names unique.
func (s *Service) UpdateDomain(ctx context.Context, name string, data Object) (*core.Domain, error) {
	s.logger.Info("updating domain", zap.String("domain", name))

	if name == "" || utf8.RuneCountInString(name) > core.MaxDomainNameLength {
		s.logger.Warn("request failed: invalid domain name", zap.String("domain", name))
		s.metrics.RecordDomainUpdate(metrics.ResultRejected)
		return nil, ErrInvalidDomainName
	}

	domain, err := s.store.FindDomainByName(ctx, name)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		s.logger.Warn("request failed: domain lookup failed", zap.String("domain", name), zap.Error(err))
		s.metrics.RecordDomainUpdate(metrics.ResultFailed)
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	if !data.Has("type") {
		s.logger.Warn("request failed: no type parameter", zap.String("domain", name))
		s.metrics.RecordDomainUpdate(metrics.ResultRejected)
		return nil, ErrMissingType
	}

	domainType, ok := data["type"].(string)
	if !ok || domainType == "" || utf8.RuneCountInString(domainType) > core.MaxDomainTypeLength {
		s.logger.Warn("request failed: invalid type parameter", zap.String("domain", name), zap.Any("type", data["type"]))
		s.metrics.RecordDomainUpdate(metrics.ResultRejected)
		return nil, ErrInvalidDomainType
	}

	if domain == nil {
		s.logger.Info("creating new domain", zap.String("domain", name), zap.String("type", domainType))
		domain = &core.Domain{Name: name, Type: domainType}
		if err := s.store.CreateDomain(ctx, domain); err != nil {
			s.logger.Warn("request failed: save failed", zap.String("domain", name), zap.Error(err))
			s.metrics.RecordDomainUpdate(metrics.ResultFailed)
			return nil, ErrSaveFailed
		}
		s.metrics.RecordDomainUpdate(metrics.ResultCreated)
	} else {
		s.logger.Info("updating existing domain", zap.String("domain", name), zap.String("type", domainType))
		if err := s.store.SetDomainType(ctx, domain.ID, domainType); err != nil {
			s.logger.Warn("request failed: save failed", zap.String("domain", name), zap.Error(err))
			s.metrics.RecordDomainUpdate(metrics.ResultFailed)
			return nil, ErrSaveFailed
		}
		domain.Type = domainType
		s.metrics.RecordDomainUpdate(metrics.ResultUpdated)
	}

	s.logger.Info("domain update succeeded", zap.String("domain", name), zap.Int64("id", domain.ID))
	return domain, nil
}

// UpdateRecords replaces every record of the named domain with the records
// described by data. Either the whole new set is committed or the previous
// set is left as it was.
func (s *Service) UpdateRecords(ctx context.Context, name string, data Object) ([]*core.Record, error) {
	s.logger.Info("updating records for domain", zap.String("domain", name))

	domain, err := s.findDomain(ctx, name)
	if err != nil {
		s.metrics.RecordReplacement(metrics.ResultRejected, 0)
		return nil, err
	}

	tx, err := s.store.BeginRecords(ctx, domain.ID)
	if err != nil {
		s.logger.Warn("request failed: could not start transaction", zap.String("domain", name), zap.Error(err))
		s.metrics.RecordReplacement(metrics.ResultFailed, 0)
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	defer tx.Rollback()
	s.logger.Debug("started transaction", zap.String("domain", name))

	if err := tx.DestroyAll(ctx); err != nil {
		s.logger.Warn("request failed: could not destroy records", zap.String("domain", name), zap.Error(err))
		s.metrics.RecordReplacement(metrics.ResultFailed, 0)
		return nil, ErrRecordSaveFailed
	}
	s.logger.Debug("destroyed existing records", zap.String("domain", name))

	records, err := s.stageRecords(domain, data)
	if err != nil {
		s.logger.Warn("request failed: invalid record", zap.String("domain", name), zap.Error(err))
		s.metrics.RecordReplacement(metrics.ResultRejected, 0)
		return nil, err
	}

	if err := tx.Save(ctx, records); err != nil {
		s.logger.Warn("request failed: could not save record", zap.String("domain", name), zap.Error(err))
		s.metrics.RecordReplacement(metrics.ResultFailed, 0)
		return nil, ErrRecordSaveFailed
	}

	if err := tx.Commit(); err != nil {
		s.logger.Warn("request failed: could not commit records", zap.String("domain", name), zap.Error(err))
		s.metrics.RecordReplacement(metrics.ResultFailed, 0)
		return nil, ErrRecordSaveFailed
	}

	s.logger.Info("record update succeeded", zap.String("domain", name), zap.Int("records", len(records)))
	s.metrics.RecordReplacement(metrics.ResultReplaced, len(records))
	return records, nil
}

func (s *Service) stageRecords(domain *core.Domain, data Object) ([]*core.Record, error) {
	specs, err := recordSpecs(data)
	if err != nil {
		return nil, err
	}

	if data.Has("records") {
		s.logger.Info("adding multiple records", zap.String("domain", domain.Name), zap.Int("count", len(specs)))
	} else {
		s.logger.Info("setting single record", zap.String("domain", domain.Name))
	}

	records := make([]*core.Record, 0, len(specs))
	for _, spec := range specs {
		record, err := newRecord(domain, spec)
		if err != nil {
			return nil, err
		}
		s.logger.Info("staged record",
			zap.String("name", record.Name),
			zap.String("type", record.Type),
			zap.Stringp("content", record.Content),
			zap.Intp("ttl", record.TTL),
			zap.Intp("prio", record.Prio),
		)
		records = append(records, record)
	}

	return records, nil
}

// Domain returns the named domain.
func (s *Service) Domain(ctx context.Context, name string) (*core.Domain, error) {
	return s.findDomain(ctx, name)
}

// Records returns the named domain and its records ordered by type, then name.
func (s *Service) Records(ctx context.Context, name string) (*core.Domain, []*core.Record, error) {
	domain, err := s.findDomain(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	records, err := s.store.ListRecords(ctx, domain.ID)
	if err != nil {
		s.logger.Warn("request failed: could not list records", zap.String("domain", name), zap.Error(err))
		return nil, nil, fmt.Errorf("%w: %v", ErrStore, err)
	}

	return domain, records, nil
}

func (s *Service) findDomain(ctx context.Context, name string) (*core.Domain, error) {
	domain, err := s.store.FindDomainByName(ctx, name)
	if errors.Is(err, core.ErrNotFound) {
		s.logger.Warn("domain not found", zap.String("domain", name))
		return nil, ErrDomainNotFound
	}
	if err != nil {
		s.logger.Warn("request failed: domain lookup failed", zap.String("domain", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return domain, nil
}

// UpdateSupermaster registers ip as a trusted master for nameserver.
func (s *Service) UpdateSupermaster(ctx context.Context, ip string, data Object) (*core.Supermaster, error) {
	s.logger.Info("updating supermaster", zap.String("ip", ip))

	if net.ParseIP(ip) == nil {
		s.logger.Warn("request failed: invalid ip address", zap.String("ip", ip))
		return nil, ErrInvalidIP
	}

	nameserver, ok := data["nameserver"].(string)
	if !ok || nameserver == "" || utf8.RuneCountInString(nameserver) > core.MaxDomainNameLength {
		s.logger.Warn("request failed: no nameserver parameter", zap.String("ip", ip))
		return nil, ErrMissingNameserver
	}

	sm := &core.Supermaster{IP: ip, Nameserver: nameserver}
	if v, ok := data["account"]; ok && v != nil {
		account, err := stringValue(v, core.MaxDomainAccountLength)
		if err != nil {
			s.logger.Warn("request failed: invalid account parameter", zap.String("ip", ip), zap.Error(err))
			return nil, ErrInvalidAccount
		}
		sm.Account = &account
	}

	if err := s.store.UpsertSupermaster(ctx, sm); err != nil {
		s.logger.Warn("request failed: save failed", zap.String("ip", ip), zap.Error(err))
		return nil, ErrSaveFailed
	}

	return sm, nil
}

func (s *Service) Supermasters(ctx context.Context) ([]*core.Supermaster, error) {
	sms, err := s.store.ListSupermasters(ctx)
	if err != nil {
		s.logger.Warn("request failed: could not list supermasters", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return sms, nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
