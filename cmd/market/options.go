package main

// Options are the global flags of the market CLI. Empty URLs fall back to API_URL and DATA_URL.
type Options struct {
	APIURL  string `short:"a" long:"api" description:"account and favorites API base URL"`
	DataURL string `short:"d" long:"data" description:"afs URL of the local data folder (file://, mem://)"`
	Verbose bool   `short:"v" long:"verbose" description:"debug logging"`

	Login     LoginCommand     `command:"login" description:"sign in with email and password"`
	Register  RegisterCommand  `command:"register" description:"create a buyer or dealer account"`
	Logout    LogoutCommand    `command:"logout" description:"sign out and forget the stored tokens"`
	WhoAmI    WhoAmICommand    `command:"whoami" description:"show the signed in user"`
	Vehicles  VehiclesCommand  `command:"vehicles" description:"list vehicles for sale"`
	Favorites FavoritesCommand `command:"favorites" description:"manage favorite vehicles"`
}

type LoginCommand struct {
	Email    string `short:"e" long:"email" required:"true" description:"account email"`
	Password string `short:"p" long:"password" required:"true" description:"account password"`
	app      *app
}

type RegisterCommand struct {
	Email    string `short:"e" long:"email" required:"true" description:"account email"`
	Password string `short:"p" long:"password" required:"true" description:"account password"`
	Role     string `short:"r" long:"role" default:"BUYER" choice:"BUYER" choice:"DEALER" description:"account role"`
	Name     string `short:"n" long:"name" description:"display or dealer name"`
	Address  string `long:"address" description:"dealer address"`
	Phone    string `long:"phone" description:"dealer phone"`
	Website  string `long:"website" description:"dealer website"`
	app      *app
}

type LogoutCommand struct {
	app *app
}

type WhoAmICommand struct {
	app *app
}

type VehiclesCommand struct {
	Offset int `long:"offset" default:"0" description:"first listing to show"`
	Limit  int `long:"limit" default:"20" description:"number of listings to show"`
	app    *app
}

type FavoritesCommand struct {
	List   FavoritesListCommand   `command:"list" description:"show favorites"`
	Add    FavoritesAddCommand    `command:"add" description:"add a vehicle to favorites"`
	Remove FavoritesRemoveCommand `command:"remove" description:"remove a vehicle from favorites"`
	Toggle FavoritesToggleCommand `command:"toggle" description:"add or remove a vehicle"`
	Clear  FavoritesClearCommand  `command:"clear" description:"remove all favorites"`
	Sync   FavoritesSyncCommand   `command:"sync" description:"merge favorites saved on the server"`
}

type vehicleArg struct {
	VehicleID string `positional-arg-name:"vehicle-id" required:"yes"`
}

type FavoritesListCommand struct {
	app *app
}

type FavoritesAddCommand struct {
	Args vehicleArg `positional-args:"yes" required:"yes"`
	app  *app
}

type FavoritesRemoveCommand struct {
	Args vehicleArg `positional-args:"yes" required:"yes"`
	app  *app
}

type FavoritesToggleCommand struct {
	Args vehicleArg `positional-args:"yes" required:"yes"`
	app  *app
}

type FavoritesClearCommand struct {
	app *app
}

type FavoritesSyncCommand struct {
	app *app
}

// bind hands every command the shared app
func (o *Options) bind(a *app) {
	o.Login.app = a
	o.Register.app = a
	o.Logout.app = a
	o.WhoAmI.app = a
	o.Vehicles.app = a
	o.Favorites.List.app = a
	o.Favorites.Add.app = a
	o.Favorites.Remove.app = a
	o.Favorites.Toggle.app = a
	o.Favorites.Clear.app = a
	o.Favorites.Sync.app = a
}
