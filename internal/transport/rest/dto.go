package rest

import (
	"time"

	"github.com/heartmarshall/bazaar-backend/internal/domain"
)

type donationResponse struct {
	ID                       string     `json:"id"`
	DonorID                  string     `json:"donorId"`
	Title                    string     `json:"title"`
	Description              string     `json:"description"`
	PhotoURLs                []string   `json:"photoUrls"`
	Categories               []string   `json:"categories"`
	BazaarID                 *string    `json:"bazaarId,omitempty"`
	CreatedAt                time.Time  `json:"createdAt"`
	Status                   string     `json:"status"`
	DisplayStatus            string     `json:"displayStatus"`
	AdminComment             *string    `json:"adminComment,omitempty"`
	NeedsTransport           *bool      `json:"needsTransport,omitempty"`
	ShowsTransportAssistance bool       `json:"showsTransportAssistance"`
	Delivered                bool       `json:"delivered"`
	DeliveredAt              *time.Time `json:"deliveredAt,omitempty"`
	HasQR                    bool       `json:"hasQr"`
	QRGeneratedAt            *time.Time `json:"qrGeneratedAt,omitempty"`
	ReviewerID               *string    `json:"reviewerId,omitempty"`
	ReviewedAt               *time.Time `json:"reviewedAt,omitempty"`
}

func toDonationResponse(d domain.Donation) donationResponse {
	photos := d.PhotoURLs
	if photos == nil {
		photos = []string{}
	}
	categories := d.Categories
	if categories == nil {
		categories = []string{}
	}
	return donationResponse{
		ID:                       d.ID,
		DonorID:                  d.DonorID,
		Title:                    d.Title,
		Description:              d.Description,
		PhotoURLs:                photos,
		Categories:               categories,
		BazaarID:                 d.BazaarID,
		CreatedAt:                d.CreatedAt,
		Status:                   d.Status.String(),
		DisplayStatus:            string(d.DisplayStatus()),
		AdminComment:             d.AdminComment,
		NeedsTransport:           d.NeedsTransport,
		ShowsTransportAssistance: d.ShowsTransportAssistance(),
		Delivered:                d.IsDelivered(),
		DeliveredAt:              d.DeliveredAt,
		HasQR:                    d.HasQR(),
		QRGeneratedAt:            d.QRGeneratedAt,
		ReviewerID:               d.ReviewerID,
		ReviewedAt:               d.ReviewedAt,
	}
}

type donationPageResponse struct {
	Items     []donationResponse `json:"items"`
	NextToken string             `json:"nextToken,omitempty"`
	HasMore   bool               `json:"hasMore"`
}

func toDonationPage(p domain.Page[domain.Donation]) donationPageResponse {
	items := make([]donationResponse, 0, len(p.Items))
	for _, d := range p.Items {
		items = append(items, toDonationResponse(d))
	}
	return donationPageResponse{Items: items, NextToken: p.NextToken, HasMore: p.HasMore}
}

type locationResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type hoursResponse struct {
	Days  string `json:"days"`
	Hours string `json:"hours"`
}

type bazaarResponse struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	Address            string            `json:"address"`
	Location           locationResponse  `json:"location"`
	Hours              []hoursResponse   `json:"hours"`
	Phone              string            `json:"phone,omitempty"`
	Categories         map[string]string `json:"categories,omitempty"`
	AcceptingDonations bool              `json:"acceptingDonations"`
}

func toBazaarResponse(b domain.Bazaar) bazaarResponse {
	hours := make([]hoursResponse, 0, len(b.Hours))
	for _, h := range b.Hours {
		hours = append(hours, hoursResponse{Days: h.Days, Hours: h.Hours})
	}
	return bazaarResponse{
		ID:                 b.ID,
		Name:               b.Name,
		Address:            b.Address,
		Location:           locationResponse{Lat: b.Location.Lat, Lng: b.Location.Lng},
		Hours:              hours,
		Phone:              b.Phone,
		Categories:         b.Categories,
		AcceptingDonations: b.AcceptingDonations,
	}
}

func toBazaarList(items []domain.Bazaar) []bazaarResponse {
	out := make([]bazaarResponse, 0, len(items))
	for _, b := range items {
		out = append(out, toBazaarResponse(b))
	}
	return out
}
