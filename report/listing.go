package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/c360/workplan/errors"
	"github.com/c360/workplan/resource"
)

// ClientInfo is the listing projection of a client document.
type ClientInfo struct {
	AccountID   string `json:"id_cuenta"`
	Name        string `json:"nombre"`
	ProjectType string `json:"tipo_proyecto"`
	Commitment  string `json:"compromiso"`
}

// ListClients returns the projection of every stored client, skipping
// documents that cannot be read.
func (s *Service) ListClients(ctx context.Context) ([]ClientInfo, error) {
	keys, err := s.docs.ListDocuments(ctx, "clients/")
	if err != nil {
		return nil, err
	}

	clients := make([]ClientInfo, 0, len(keys))
	for _, key := range keys {
		var c resource.Client
		if err := s.docs.GetJSON(ctx, key, &c); err != nil {
			s.logger.Warn("skipping unreadable client document", "key", key, "error", err)
			continue
		}
		clients = append(clients, ClientInfo{
			AccountID:   c.AccountID,
			Name:        c.Name,
			ProjectType: c.ProjectType,
			Commitment:  c.Commitment,
		})
	}
	return clients, nil
}

// GetClient returns one client document.
func (s *Service) GetClient(ctx context.Context, accountID string) (resource.Client, error) {
	var c resource.Client
	if err := s.docs.GetJSON(ctx, resource.ClientKey(accountID), &c); err != nil {
		if errors.IsNotFound(err) {
			return resource.Client{}, errors.WrapNotFound(
				fmt.Errorf("cliente con id %s no encontrado", accountID),
				"report", "get_client", "load client "+accountID)
		}
		return resource.Client{}, err
	}
	return c, nil
}

// AvailableYears returns the year partitions a client has, derived from the
// object keys alone.
func (s *Service) AvailableYears(ctx context.Context, clientID string) ([]string, error) {
	prefix := resource.WorkloadPrefix(clientID)
	keys, err := s.docs.ListAll(ctx, prefix)
	if err != nil {
		return nil, err
	}

	yearsSet := map[string]struct{}{}
	for _, key := range keys {
		parts := strings.Split(strings.TrimPrefix(key, prefix), "/")
		if len(parts) >= 2 && parts[0] != "" {
			yearsSet[parts[0]] = struct{}{}
		}
	}

	years := make([]string, 0, len(yearsSet))
	for year := range yearsSet {
		years = append(years, year)
	}
	sort.Strings(years)
	return years, nil
}

// WorkloadsForYear returns every readable workload in a client's year
// partition.
func (s *Service) WorkloadsForYear(ctx context.Context, clientID, year string) ([]resource.Workload, error) {
	keys, err := s.docs.ListDocuments(ctx, resource.WorkloadPrefix(clientID, year))
	if err != nil {
		return nil, err
	}

	workloads := make([]resource.Workload, 0, len(keys))
	for _, w := range s.fetchAll(ctx, keys) {
		if w != nil {
			workloads = append(workloads, *w)
		}
	}
	return workloads, nil
}

// FindWorkload locates a workload by id inside a year partition, scanning
// its months. Without a secondary index this is the only way to find a
// document when the caller does not know the month.
func (s *Service) FindWorkload(ctx context.Context, clientID, year, workloadID string) (resource.Workload, error) {
	suffix := "/" + workloadID + ".json"
	keys, err := s.docs.ListDocuments(ctx, resource.WorkloadPrefix(clientID, year))
	if err != nil {
		return resource.Workload{}, err
	}

	for _, key := range keys {
		if !strings.HasSuffix(key, suffix) {
			continue
		}
		var w resource.Workload
		if err := s.docs.GetJSON(ctx, key, &w); err != nil {
			return resource.Workload{}, err
		}
		return w, nil
	}

	return resource.Workload{}, errors.WrapNotFound(
		fmt.Errorf("workload %s no encontrado para el cliente %s en %s", workloadID, clientID, year),
		"report", "find_workload", "locate workload "+workloadID)
}
