package mockapi

import (
	_ "embed"
	"fmt"
	"time"

	"loopwise-go/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

//go:embed fixtures.yaml
var fixtureData []byte

// notApplicable marks a subscription date that does not apply.
const notApplicable = "N/A"

type fixtureFile struct {
	User           fixtureUser           `yaml:"user"`
	TakenUsernames []string              `yaml:"takenUsernames"`
	Subscriptions  []fixtureSubscription `yaml:"subscriptions"`
	Transactions   []fixtureTransaction  `yaml:"transactions"`
	Suggestions    []fixtureSuggestion   `yaml:"suggestions"`
	Messages       []fixtureMessage      `yaml:"messages"`
	Team           []fixtureTeamMember   `yaml:"team"`
	Sessions       []fixtureSession      `yaml:"sessions"`
	Referrals      []fixtureReferral     `yaml:"referrals"`
}

type fixtureUser struct {
	Id          string            `yaml:"id"`
	Address     string            `yaml:"address"`
	DisplayName string            `yaml:"displayName"`
	Username    string            `yaml:"username"`
	Email       string            `yaml:"email"`
	Phone       string            `yaml:"phone"`
	Bio         string            `yaml:"bio"`
	Balances    map[string]string `yaml:"balances"`
	WalletId    string            `yaml:"walletId"`
}

type fixturePlan struct {
	Id          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	MonthlyCost string   `yaml:"monthlyCost"`
	Features    []string `yaml:"features"`
}

type fixtureSubscription struct {
	Id             string        `yaml:"id"`
	Name           string        `yaml:"name"`
	Provider       string        `yaml:"provider"`
	Status         string        `yaml:"status"`
	Category       string        `yaml:"category"`
	UsageScore     float64       `yaml:"usageScore"`
	LastPayment    string        `yaml:"lastPayment"`
	NextPayment    string        `yaml:"nextPayment"`
	CurrentPlanId  string        `yaml:"currentPlanId"`
	ImageUrl       string        `yaml:"imageUrl"`
	AvailablePlans []fixturePlan `yaml:"availablePlans"`
}

type fixtureTransaction struct {
	Id          string `yaml:"id"`
	Type        string `yaml:"type"`
	Status      string `yaml:"status"`
	Amount      string `yaml:"amount"`
	Currency    string `yaml:"currency"`
	Description string `yaml:"description"`
	Timestamp   string `yaml:"timestamp"`
	Category    string `yaml:"category"`
}

type fixtureSuggestion struct {
	Id               string  `yaml:"id"`
	Type             string  `yaml:"type"`
	Title            string  `yaml:"title"`
	Description      string  `yaml:"description"`
	Confidence       float64 `yaml:"confidence"`
	EstimatedSavings string  `yaml:"estimatedSavings"`
	SubscriptionId   string  `yaml:"subscriptionId"`
}

type fixtureMessage struct {
	Id          string   `yaml:"id"`
	Text        string   `yaml:"text"`
	Suggestions []string `yaml:"suggestions"`
}

type fixtureTeamMember struct {
	Id     string `yaml:"id"`
	Name   string `yaml:"name"`
	Email  string `yaml:"email"`
	Role   string `yaml:"role"`
	Status string `yaml:"status"`
}

type fixtureSession struct {
	Id         string `yaml:"id"`
	Device     string `yaml:"device"`
	Location   string `yaml:"location"`
	LastActive string `yaml:"lastActive"`
	IsCurrent  bool   `yaml:"isCurrent"`
}

type fixtureReferral struct {
	Id           string `yaml:"id"`
	FriendEmail  string `yaml:"friendEmail"`
	DateJoined   string `yaml:"dateJoined"`
	Status       string `yaml:"status"`
	RewardAmount string `yaml:"rewardAmount"`
}

// dataset is the decoded fixture file in domain types.
type dataset struct {
	user           models.User
	takenUsernames []string
	subscriptions  []models.Subscription
	transactions   []models.Transaction
	suggestions    []models.AiSuggestion
	messages       []models.Message
	team           []models.TeamMember
	sessions       []models.Session
	referrals      []models.Referral
}

func loadDataset(raw []byte) (*dataset, error) {
	var f fixtureFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures: %w", err)
	}

	d := &dataset{takenUsernames: f.TakenUsernames}

	balances := make(map[string]decimal.Decimal, len(f.User.Balances))
	for cur, v := range f.User.Balances {
		amount, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s balance %q: %w", cur, v, err)
		}
		balances[cur] = amount
	}
	d.user = models.User{
		Id:          f.User.Id,
		Address:     f.User.Address,
		Username:    f.User.Username,
		DisplayName: f.User.DisplayName,
		Email:       f.User.Email,
		Phone:       f.User.Phone,
		Bio:         f.User.Bio,
		Balances:    balances,
		WalletId:    f.User.WalletId,
	}

	for _, s := range f.Subscriptions {
		sub, err := s.toModel()
		if err != nil {
			return nil, fmt.Errorf("subscription %s: %w", s.Id, err)
		}
		d.subscriptions = append(d.subscriptions, sub)
	}

	for _, t := range f.Transactions {
		amount, err := decimal.NewFromString(t.Amount)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: invalid amount: %w", t.Id, err)
		}
		ts, err := time.Parse(time.RFC3339, t.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: invalid timestamp: %w", t.Id, err)
		}
		d.transactions = append(d.transactions, models.Transaction{
			Id:          t.Id,
			Type:        models.TransactionType(t.Type),
			Status:      models.TransactionStatus(t.Status),
			Amount:      amount,
			Currency:    t.Currency,
			Description: t.Description,
			Timestamp:   ts,
			Category:    t.Category,
		})
	}

	for _, s := range f.Suggestions {
		savings, err := decimal.NewFromString(s.EstimatedSavings)
		if err != nil {
			return nil, fmt.Errorf("suggestion %s: invalid savings: %w", s.Id, err)
		}
		d.suggestions = append(d.suggestions, models.AiSuggestion{
			Id:               s.Id,
			Type:             models.SuggestionType(s.Type),
			Title:            s.Title,
			Description:      s.Description,
			Confidence:       s.Confidence,
			EstimatedSavings: savings,
			SubscriptionId:   s.SubscriptionId,
		})
	}

	for _, m := range f.Messages {
		d.messages = append(d.messages, models.Message{
			Id:          m.Id,
			Text:        m.Text,
			Sender:      models.SenderAi,
			Suggestions: m.Suggestions,
		})
	}
	for _, m := range f.Team {
		d.team = append(d.team, models.TeamMember(m))
	}
	for _, s := range f.Sessions {
		d.sessions = append(d.sessions, models.Session(s))
	}
	for _, r := range f.Referrals {
		reward, err := decimal.NewFromString(r.RewardAmount)
		if err != nil {
			return nil, fmt.Errorf("referral %s: invalid reward: %w", r.Id, err)
		}
		d.referrals = append(d.referrals, models.Referral{
			Id:           r.Id,
			FriendEmail:  r.FriendEmail,
			DateJoined:   r.DateJoined,
			Status:       r.Status,
			RewardAmount: reward,
		})
	}
	return d, nil
}

func (s fixtureSubscription) toModel() (models.Subscription, error) {
	last, err := parseOptionalDate(s.LastPayment)
	if err != nil {
		return models.Subscription{}, err
	}
	next, err := parseOptionalDate(s.NextPayment)
	if err != nil {
		return models.Subscription{}, err
	}

	plans := make([]models.Plan, 0, len(s.AvailablePlans))
	for _, p := range s.AvailablePlans {
		cost, err := decimal.NewFromString(p.MonthlyCost)
		if err != nil {
			return models.Subscription{}, fmt.Errorf("plan %s: invalid cost: %w", p.Id, err)
		}
		plans = append(plans, models.Plan{Id: p.Id, Name: p.Name, MonthlyCost: cost, Features: p.Features})
	}

	return models.Subscription{
		Id:             s.Id,
		Name:           s.Name,
		Provider:       s.Provider,
		Category:       s.Category,
		Status:         models.SubscriptionStatus(s.Status),
		CurrentPlanId:  s.CurrentPlanId,
		AvailablePlans: plans,
		Usage:          s.UsageScore,
		LastPayment:    last,
		NextPayment:    next,
		ImageUrl:       s.ImageUrl,
	}, nil
}

func parseOptionalDate(v string) (time.Time, error) {
	if v == "" || v == notApplicable {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", v, err)
	}
	return t, nil
}
