package donation

import (
	"context"
	"fmt"
	"time"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/internal/record"
)

// view is a filter and creation-time ordering over the donation collection.
type view struct {
	name    string
	filters []docstore.Filter
	desc    bool
}

// PendingQueue lists donations awaiting review, newest first.
func (s *Service) PendingQueue(ctx context.Context, actor domain.Actor, req domain.PageRequest) (domain.Page[domain.Donation], error) {
	if err := domain.AuthorizePendingQueue(actor); err != nil {
		return domain.Page[domain.Donation]{}, err
	}
	return s.loadPage(ctx, view{
		name:    "pending",
		filters: []docstore.Filter{record.PendingFilter()},
		desc:    true,
	}, req)
}

// BazaarQueue lists approved donations assigned to the actor's bazaar,
// oldest first.
func (s *Service) BazaarQueue(ctx context.Context, actor domain.Actor, req domain.PageRequest) (domain.Page[domain.Donation], error) {
	if err := domain.AuthorizeBazaarQueue(actor); err != nil {
		return domain.Page[domain.Donation]{}, err
	}
	return s.loadPage(ctx, view{
		name: "bazaar",
		filters: []docstore.Filter{
			{Field: record.FieldStatus, Value: domain.DonationStatusApproved.String()},
			{Field: record.FieldBazaarID, Value: *actor.BazaarID},
		},
	}, req)
}

// DonorHistory lists the actor's own donations, newest first.
func (s *Service) DonorHistory(ctx context.Context, actor domain.Actor, req domain.PageRequest) (domain.Page[domain.Donation], error) {
	if err := domain.AuthorizeHistory(actor); err != nil {
		return domain.Page[domain.Donation]{}, err
	}
	return s.loadPage(ctx, view{
		name:    "history",
		filters: []docstore.Filter{{Field: record.FieldDonorID, Value: actor.ID}},
		desc:    true,
	}, req)
}

// loadPage fetches one page plus one extra record to learn whether another
// page exists, then truncates. The search refinement runs over the fetched
// page only; the continuation token always follows the unfiltered page.
func (s *Service) loadPage(ctx context.Context, v view, req domain.PageRequest) (domain.Page[domain.Donation], error) {
	start := time.Now()
	defer s.metrics.ObserveView(v.name, start)

	key, err := domain.DecodePageToken(req.Token)
	if err != nil {
		return domain.Page[domain.Donation]{}, err
	}

	q := docstore.Query{
		Collection: record.Donations,
		Filters:    v.filters,
		OrderBy:    docstore.OrderBy{Field: record.FieldCreatedAt, Desc: v.desc},
		Limit:      s.cfg.PageSize + 1,
	}
	if key != nil {
		q.After = &docstore.Cursor{Value: key.CreatedAt, ID: key.ID}
	}

	res, err := s.store.Query(ctx, q)
	if err != nil {
		return domain.Page[domain.Donation]{}, fmt.Errorf("load %s view: %w", v.name, err)
	}

	items := make([]domain.Donation, 0, len(res.Records))
	for _, r := range res.Records {
		d, err := record.DonationFromRecord(r)
		if err != nil {
			return domain.Page[domain.Donation]{}, fmt.Errorf("load %s view: %w", v.name, err)
		}
		items = append(items, d)
	}

	page := domain.Page[domain.Donation]{}
	if len(items) > s.cfg.PageSize {
		items = items[:s.cfg.PageSize]
		page.HasMore = true
		page.NextToken = items[len(items)-1].SortKey().Encode()
	}
	page.Items = domain.FilterDonations(items, req.Query)
	return page, nil
}
