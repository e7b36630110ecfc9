package handlers

import (
	"time"

	"service-delivery-engine/internal/domain"
	"service-delivery-engine/internal/service/availability"
)

type pointDTO struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

func (p pointDTO) toModel() domain.Point { return domain.Point{Lat: p.Lat, Lng: p.Lng} }

func pointToDTO(p domain.Point) pointDTO { return pointDTO{Lat: p.Lat, Lng: p.Lng} }

type availabilityResponse struct {
	IsAvailable      bool      `json:"isAvailable"`
	EstimatedMinutes *int      `json:"estimatedMinutes"`
	Location         *pointDTO `json:"location,omitempty"`
}

func availabilityToDTO(res availability.Result) availabilityResponse {
	return availabilityResponse{IsAvailable: res.IsAvailable, EstimatedMinutes: res.EstimatedMinutes}
}

type windowDTO struct {
	Day   int    `json:"day" validate:"gte=0,lte=6"`
	Start string `json:"start" validate:"required,len=5"`
	End   string `json:"end" validate:"required,len=5"`
}

type candidateDTO struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Location pointDTO    `json:"location"`
	RadiusKm float64     `json:"radiusKm"`
	IsActive bool        `json:"isActive"`
	Windows  []windowDTO `json:"windows"`
}

type createCandidateRequest struct {
	Name     string      `json:"name" validate:"required,max=200"`
	Location pointDTO    `json:"location"`
	RadiusKm float64     `json:"radiusKm" validate:"gt=0"`
	IsActive *bool       `json:"isActive"`
	Windows  []windowDTO `json:"windows" validate:"dive"`
}

type updateCandidateRequest struct {
	Name     *string      `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Location *pointDTO    `json:"location,omitempty"`
	RadiusKm *float64     `json:"radiusKm,omitempty" validate:"omitempty,gt=0"`
	IsActive *bool        `json:"isActive,omitempty"`
	Windows  *[]windowDTO `json:"windows,omitempty"`
}

func windowsToModel(ws []windowDTO) []domain.ServiceWindow {
	out := make([]domain.ServiceWindow, 0, len(ws))
	for _, w := range ws {
		out = append(out, domain.ServiceWindow{Day: time.Weekday(w.Day), Start: w.Start, End: w.End})
	}
	return out
}

func (r createCandidateRequest) toModel() *domain.DeliveryCandidate {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &domain.DeliveryCandidate{
		Name:     r.Name,
		Location: r.Location.toModel(),
		RadiusKm: r.RadiusKm,
		IsActive: active,
		Windows:  windowsToModel(r.Windows),
	}
}

func (r updateCandidateRequest) toModel(id int64) domain.PartialCandidateUpdate {
	u := domain.PartialCandidateUpdate{
		ID:       id,
		Name:     r.Name,
		RadiusKm: r.RadiusKm,
		IsActive: r.IsActive,
	}
	if r.Location != nil {
		p := r.Location.toModel()
		u.Location = &p
	}
	if r.Windows != nil {
		ws := windowsToModel(*r.Windows)
		u.Windows = &ws
	}
	return u
}

func candidateToDTO(c domain.DeliveryCandidate) candidateDTO {
	ws := make([]windowDTO, 0, len(c.Windows))
	for _, w := range c.Windows {
		ws = append(ws, windowDTO{Day: int(w.Day), Start: w.Start, End: w.End})
	}
	return candidateDTO{
		ID:       c.ID,
		Name:     c.Name,
		Location: pointToDTO(c.Location),
		RadiusKm: c.RadiusKm,
		IsActive: c.IsActive,
		Windows:  ws,
	}
}

func candidatesToDTO(list []domain.DeliveryCandidate) []candidateDTO {
	out := make([]candidateDTO, 0, len(list))
	for _, c := range list {
		out = append(out, candidateToDTO(c))
	}
	return out
}

type createOrderRequest struct {
	BuyerID             string   `json:"buyerId" validate:"required"`
	SellerID            string   `json:"sellerId" validate:"required"`
	CourierID           string   `json:"courierId"`
	Destination         pointDTO `json:"destination"`
	ServiceLevelMinutes int      `json:"serviceLevelMinutes" validate:"gte=0"`
}

func (r createOrderRequest) toModel() domain.NewOrder {
	return domain.NewOrder{
		BuyerID:             r.BuyerID,
		SellerID:            r.SellerID,
		CourierID:           r.CourierID,
		Destination:         r.Destination.toModel(),
		ServiceLevelMinutes: r.ServiceLevelMinutes,
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type orderDTO struct {
	ID          string             `json:"id"`
	BuyerID     string             `json:"buyerId"`
	SellerID    string             `json:"sellerId"`
	CourierID   string             `json:"courierId,omitempty"`
	Destination pointDTO           `json:"destination"`
	Status      domain.OrderStatus `json:"status"`
	CreatedAt   time.Time          `json:"createdAt"`
	Deadline    time.Time          `json:"deadline"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func orderToDTO(o domain.DeliveryOrder) orderDTO {
	return orderDTO{
		ID:          o.ID,
		BuyerID:     o.BuyerID,
		SellerID:    o.SellerID,
		CourierID:   o.CourierID,
		Destination: pointToDTO(o.Destination),
		Status:      o.Status,
		CreatedAt:   o.CreatedAt,
		Deadline:    o.Deadline,
		UpdatedAt:   o.UpdatedAt,
	}
}

type countdownResponse struct {
	RemainingMinutes int                    `json:"remainingMinutes"`
	Status           domain.CountdownStatus `json:"status"`
	Deadline         *time.Time             `json:"deadline"`
	OrderStatus      domain.OrderStatus     `json:"orderStatus"`
}

func countdownToDTO(v domain.CountdownView) countdownResponse {
	resp := countdownResponse{
		RemainingMinutes: v.State.RemainingMinutes,
		Status:           v.State.Status,
		OrderStatus:      v.OrderStatus,
	}
	if !v.Deadline.IsZero() {
		d := v.Deadline
		resp.Deadline = &d
	}
	return resp
}
