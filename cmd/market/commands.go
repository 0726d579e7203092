package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/go-salvage-market/authmodel"
	apperrors "github.com/jrsteele09/go-salvage-market/internal/errors"
	"github.com/jrsteele09/go-salvage-market/internal/utils"
	"github.com/jrsteele09/go-salvage-market/vehicles"
)

func (c *LoginCommand) Execute([]string) error {
	if err := c.app.open(); err != nil {
		return err
	}
	if err := c.app.session.Login(c.app.ctx, c.Email, c.Password); err != nil {
		return describe("login", err)
	}
	u := c.app.session.State().User
	fmt.Fprintf(c.app.out, "signed in as %s (%s)\n", u.Email, u.Role)
	return nil
}

func (c *RegisterCommand) Execute([]string) error {
	if err := c.app.open(); err != nil {
		return err
	}
	err := c.app.session.Register(c.app.ctx, authmodel.RegisterRequest{
		Email:    c.Email,
		Password: c.Password,
		Role:     c.Role,
		Name:     c.Name,
		Address:  c.Address,
		Phone:    c.Phone,
		Website:  c.Website,
	})
	if err != nil {
		return describe("register", err)
	}
	u := c.app.session.State().User
	fmt.Fprintf(c.app.out, "registered %s (%s)\n", u.Email, u.Role)
	return nil
}

func (c *LogoutCommand) Execute([]string) error {
	if err := c.app.open(); err != nil {
		return err
	}
	c.app.session.Logout(c.app.ctx)
	fmt.Fprintln(c.app.out, "signed out")
	return nil
}

func (c *WhoAmICommand) Execute([]string) error {
	if err := c.app.open(); err != nil {
		return err
	}
	state := c.app.session.State()
	if !state.IsAuthenticated() {
		fmt.Fprintln(c.app.out, "not signed in")
		return nil
	}
	w := tabwriter.NewWriter(c.app.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "email\t%s\n", state.User.Email)
	fmt.Fprintf(w, "role\t%s\n", state.User.Role)
	if state.User.Name != "" {
		fmt.Fprintf(w, "name\t%s\n", state.User.Name)
	}
	if state.Token != nil && !state.Token.Expiry.IsZero() {
		fmt.Fprintf(w, "expires\t%s\n", state.Token.Expiry.Format("15:04:05"))
	}
	return w.Flush()
}

func (c *VehiclesCommand) Execute([]string) error {
	if err := c.app.open(); err != nil {
		return err
	}
	list, err := c.app.vehicles().List(c.app.ctx, c.Offset, c.Limit)
	if err != nil {
		return describe("vehicles", err)
	}
	favs := c.app.favorites()
	w := tabwriter.NewWriter(c.app.out, 0, 4, 2, ' ', 0)
	for _, v := range list {
		mark := " "
		if favs.IsFavorite(v.ID) {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%dkm\t%.0f\n", mark, v.ID, v.Title(), v.Condition, utils.Value(v.Mileage), v.Price)
	}
	return w.Flush()
}

func (c *FavoritesListCommand) Execute([]string) error {
	if err := c.app.open(); err != nil {
		return err
	}
	printVehicles(c.app, c.app.favorites().Items())
	return nil
}

func (c *FavoritesAddCommand) Execute([]string) error {
	if err := c.app.open(); err != nil {
		return err
	}
	v, err := c.app.vehicles().Get(c.app.ctx, c.Args.VehicleID)
	if err != nil {
		return describe("favorites add", err)
	}
	if err := c.app.favorites().Add(c.app.ctx, *v); err != nil {
		return describe("favorites add", err)
	}
	fmt.Fprintf(c.app.out, "added %s\n", v.Title())
	return nil
}

func (c *FavoritesRemoveCommand) Execute([]string) error {
	if err := c.app.open(); err != nil {
		return err
	}
	if err := c.app.favorites().Remove(c.app.ctx, c.Args.VehicleID); err != nil {
		return describe("favorites remove", err)
	}
	fmt.Fprintf(c.app.out, "removed %s\n", c.Args.VehicleID)
	return nil
}

func (c *FavoritesToggleCommand) Execute([]string) error {
	if err := c.app.open(); err != nil {
		return err
	}
	favs := c.app.favorites()
	if favs.IsFavorite(c.Args.VehicleID) {
		if err := favs.Remove(c.app.ctx, c.Args.VehicleID); err != nil {
			return describe("favorites toggle", err)
		}
		fmt.Fprintf(c.app.out, "removed %s\n", c.Args.VehicleID)
		return nil
	}
	v, err := c.app.vehicles().Get(c.app.ctx, c.Args.VehicleID)
	if err != nil {
		return describe("favorites toggle", err)
	}
	if err := favs.Toggle(c.app.ctx, *v); err != nil {
		return describe("favorites toggle", err)
	}
	fmt.Fprintf(c.app.out, "added %s\n", v.Title())
	return nil
}

func (c *FavoritesClearCommand) Execute([]string) error {
	if err := c.app.open(); err != nil {
		return err
	}
	c.app.favorites().Clear(c.app.ctx)
	fmt.Fprintln(c.app.out, "favorites cleared")
	return nil
}

func (c *FavoritesSyncCommand) Execute([]string) error {
	if err := c.app.open(); err != nil {
		return err
	}
	if !c.app.session.IsAuthenticated() {
		return describe("favorites sync", apperrors.ErrUnauthorized)
	}
	favs := c.app.favorites()
	if err := favs.Refresh(c.app.ctx); err != nil {
		return describe("favorites sync", err)
	}
	printVehicles(c.app, favs.Items())
	return nil
}

func printVehicles(a *app, list []vehicles.Vehicle) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "no favorites")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, v := range list {
		fmt.Fprintf(w, "%s\t%s\t%.0f\n", v.ID, v.Title(), v.Price)
	}
	_ = w.Flush()
}

// describe turns a store error into the message a user sees
func describe(action string, err error) error {
	var msg string
	switch apperrors.Kind(err) {
	case apperrors.ErrInvalidCredentials:
		msg = "wrong email or password"
	case apperrors.ErrEmailExists:
		msg = "that email is already registered"
	case apperrors.ErrRefreshInvalid, apperrors.ErrUnauthorized:
		msg = "not signed in, run market login"
	case apperrors.ErrNetwork:
		msg = "cannot reach the server"
	case apperrors.ErrNotFound:
		msg = "no such vehicle"
	case apperrors.ErrInvalidRequest:
		msg = strings.TrimSuffix(err.Error(), ": "+apperrors.ErrInvalidRequest.Error())
	default:
		msg = err.Error()
	}
	return &commandError{msg: action + ": " + msg, err: err}
}

// commandError shows the friendly message and keeps the cause for errors.Is
type commandError struct {
	msg string
	err error
}

func (e *commandError) Error() string { return e.msg }

func (e *commandError) Unwrap() error { return e.err }
