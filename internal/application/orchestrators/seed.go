package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"fashionablylate/internal/adapters/storage/contact"
	"fashionablylate/internal/adapters/storage/seed"
	"fashionablylate/internal/domain/account"
	"fashionablylate/internal/domain/category"
	domainContact "fashionablylate/internal/domain/contact"
)

// CategoryStoreForSeed defines the store interface needed by Seed.
type CategoryStoreForSeed interface {
	Create(ctx context.Context, c category.Category) (int64, error)
	List(ctx context.Context) ([]category.Category, error)
}

// UserStoreForSeed defines the store interface needed by Seed.
type UserStoreForSeed interface {
	Create(ctx context.Context, u account.User) (int64, error)
	Count(ctx context.Context) (int, error)
}

// ContactStoreForSeed defines the store interface needed by Seed.
type ContactStoreForSeed interface {
	Create(ctx context.Context, c domainContact.Contact) (int64, error)
	Count(ctx context.Context, filter contact.ListFilter) (int, error)
}

// SeedAdmin is the account created when the users table is empty.
type SeedAdmin struct {
	Name     string
	Email    string
	Password string
}

// SeedDeps holds dependencies for Seed.
// Rand may be nil; a time-seeded source is used then.
type SeedDeps struct {
	CategoryStore CategoryStoreForSeed
	UserStore     UserStoreForSeed
	ContactStore  ContactStoreForSeed
	Data          seed.Data
	Admin         SeedAdmin
	Demo          bool
	Rand          *rand.Rand
	Now           func() time.Time
}

// SeedResult reports what was created.
type SeedResult struct {
	Categories int
	Admin      bool
	Contacts   int
}

// demoWindow spreads generated contacts over the recent past.
const demoWindow = 60 * 24 * time.Hour

// ExecuteSeed creates categories, the admin user and optional demo contacts.
// Each part runs only when its table is empty, so repeated starts are no-ops.
// PRE: schema is migrated
// POST: categories exist; at least one user exists; demo contacts exist when Demo is set
func ExecuteSeed(ctx context.Context, deps SeedDeps) (SeedResult, error) {
	var result SeedResult
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	cats, err := deps.CategoryStore.List(ctx)
	if err != nil {
		return result, fmt.Errorf("list categories: %w", err)
	}
	if len(cats) == 0 {
		for _, label := range deps.Data.Categories {
			c := category.Category{Content: label, CreatedAt: now, UpdatedAt: now}
			if err := c.Validate(); err != nil {
				return result, fmt.Errorf("seed category %q: %w", label, err)
			}
			id, err := deps.CategoryStore.Create(ctx, c)
			if err != nil {
				return result, fmt.Errorf("create category %q: %w", label, err)
			}
			c.ID = id
			cats = append(cats, c)
			result.Categories++
		}
		slog.Info("seed_event", "event", "categories_created", "count", result.Categories)
	}

	users, err := deps.UserStore.Count(ctx)
	if err != nil {
		return result, fmt.Errorf("count users: %w", err)
	}
	if users == 0 {
		u := account.User{Name: deps.Admin.Name, Email: deps.Admin.Email, CreatedAt: now, UpdatedAt: now}
		if err := u.Validate(); err != nil {
			return result, fmt.Errorf("seed admin: %w", err)
		}
		if err := u.SetPassword(deps.Admin.Password); err != nil {
			return result, fmt.Errorf("seed admin: %w", err)
		}
		if _, err := deps.UserStore.Create(ctx, u); err != nil {
			return result, fmt.Errorf("create admin: %w", err)
		}
		result.Admin = true
		slog.Info("seed_event", "event", "admin_created", "email", u.Email)
	}

	if !deps.Demo || deps.Data.Demo.Contacts <= 0 || len(cats) == 0 {
		return result, nil
	}
	existing, err := deps.ContactStore.Count(ctx, contact.ListFilter{})
	if err != nil {
		return result, fmt.Errorf("count contacts: %w", err)
	}
	if existing > 0 {
		return result, nil
	}

	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), 0x5eed))
	}
	for i := 0; i < deps.Data.Demo.Contacts; i++ {
		c := demoContact(rng, i, deps.Data.Demo, cats, now)
		if _, err := deps.ContactStore.Create(ctx, c); err != nil {
			return result, fmt.Errorf("create demo contact %d: %w", i, err)
		}
		result.Contacts++
	}
	slog.Info("seed_event", "event", "demo_contacts_created", "count", result.Contacts)
	return result, nil
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.IntN(len(items))]
}

// demoContact generates one contact that passes the contact form rules.
func demoContact(rng *rand.Rand, i int, vocab seed.Demo, cats []category.Category, now time.Time) domainContact.Contact {
	building := ""
	if len(vocab.Buildings) > 0 && rng.IntN(3) > 0 {
		building = fmt.Sprintf("%s%d号室", pick(rng, vocab.Buildings), 101+rng.IntN(900))
	}
	created := now.Add(-time.Duration(rng.Int64N(int64(demoWindow))))
	return domainContact.Contact{
		CategoryID: pick(rng, cats).ID,
		LastName:   pick(rng, vocab.LastNames),
		FirstName:  pick(rng, vocab.FirstNames),
		Gender:     pick(rng, domainContact.Genders),
		Email:      fmt.Sprintf("user%03d@%s", i+1, pick(rng, vocab.EmailDomains)),
		Tell: domainContact.JoinPhone(
			fmt.Sprintf("0%d0", 7+rng.IntN(3)),
			fmt.Sprintf("%04d", rng.IntN(10000)),
			fmt.Sprintf("%04d", rng.IntN(10000)),
		),
		Address:   fmt.Sprintf("%s%s%d-%d-%d", pick(rng, vocab.Prefectures), pick(rng, vocab.Cities), 1+rng.IntN(9), 1+rng.IntN(20), 1+rng.IntN(30)),
		Building:  building,
		Detail:    pick(rng, vocab.Details),
		CreatedAt: created,
		UpdatedAt: created,
	}
}
