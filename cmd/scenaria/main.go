// Command scenaria is an example suite: a small in-memory shop exercised
// by one Go declared scenario and the YAML files in ./scenarios.
//
// Run it from this directory:
//
//	go run . --env qa
//	go run . list --format json
package main

import (
	"errors"
	"fmt"

	"github.com/roach88/scenaria"
	"github.com/roach88/scenaria/pkg/metadata"
	"github.com/roach88/scenaria/pkg/role"
	"github.com/roach88/scenaria/pkg/scenario"
	"github.com/roach88/scenaria/pkg/variant"
)

// cart is the per-execution shop state, kept in a scope variable.
type cart struct {
	items []string
	paid  string
	mails []string
}

func cartOf(s *scenario.Scope) (*cart, error) {
	v, _ := s.Var("cart")
	c, ok := v.(*cart)
	if !ok || c == nil {
		return nil, errors.New("shop is not open")
	}
	return c, nil
}

func withCart(fn func(*scenario.Scope, *cart) error) scenario.Func {
	return func(s *scenario.Scope) error {
		c, err := cartOf(s)
		if err != nil {
			return err
		}
		return fn(s, c)
	}
}

func define(s *scenario.Suite) error {
	role.Install(s, role.Config{
		Descriptions: map[string]string{"admin": "as admin", "user": "as customer"},
		Default:      "user",
	})

	shared := map[string]func(*scenario.Builder){
		"open shop": func(b *scenario.Builder) {
			b.Setup().Do(func(s *scenario.Scope) error {
				var name string
				if err := s.Env().Decode("shop.name", &name); err != nil {
					name = "shop"
				}
				s.Logger().Debug("opening shop", "shop", name, "role", role.Current(s))
				s.Set("cart", &cart{})
				return nil
			})
		},
		"fill cart": func(b *scenario.Builder) {
			b.Action().Do(withCart(func(_ *scenario.Scope, c *cart) error {
				c.items = append(c.items, "book")
				return nil
			}))
		},
		"pay": func(b *scenario.Builder) {
			b.Action().Do(withCart(func(s *scenario.Scope, c *cart) error {
				if len(c.items) == 0 {
					return errors.New("cart is empty")
				}
				c.paid = fmt.Sprint(s.Metadata()["payment"])
				return nil
			}))
		},
		"receipt sent": func(b *scenario.Builder) {
			b.Verify().Do(withCart(func(_ *scenario.Scope, c *cart) error {
				if c.paid != "card" {
					return fmt.Errorf("paid by %q, no card receipt", c.paid)
				}
				return nil
			}))
		},
		"invoice mailed": func(b *scenario.Builder) {
			b.Verify().Do(withCart(func(_ *scenario.Scope, c *cart) error {
				c.mails = append(c.mails, "invoice")
				return nil
			}))
		},
		"empty cart": func(b *scenario.Builder) {
			b.Teardown().Do(func(s *scenario.Scope) error {
				if s.Keep() {
					return nil
				}
				s.Set("cart", nil)
				return nil
			})
		},
	}
	for name, fn := range shared {
		if err := s.SharedStep(name, fn); err != nil {
			return err
		}
	}

	return s.Define("Manage catalog", func(b *scenario.Builder) {
		role.As(b, "admin")
		b.Diagonal("product", variant.V("book", "book"), variant.V("poster", "poster"))
		b.Setup(scenario.Shared("open shop"))
		b.LetOnce("price", func(s *scenario.Scope, _ ...any) (any, error) {
			if s.Metadata()["product"] == "poster" {
				return 15, nil
			}
			return 30, nil
		})
		b.Context("publishing", func(b *scenario.Builder) {
			b.It("has a price", func(s *scenario.Scope) error {
				if s.MustGet("price").(int) <= 0 {
					return errors.New("no price")
				}
				return nil
			})
			b.ItIf(scenario.When(func(s *scenario.Scope) bool { return role.Current(s) == "admin" }),
				"can publish", func(*scenario.Scope) error { return nil })
		}).Meta(metadata.Metadata{"area": "catalog"})
		b.Teardown(scenario.Shared("empty cart"))
	})
}

func main() {
	scenaria.Main(define)
}
