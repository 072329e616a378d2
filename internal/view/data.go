package view

import (
	"warbler/internal/form"
	"warbler/internal/model"
)

// Page names accepted by Renderer.Render.
const (
	PageHomeAnon    = "home-anon"
	PageHome        = "home"
	PageError       = "error"
	PageSignup      = "users/signup"
	PageLogin       = "users/login"
	PageUsers       = "users/index"
	PageUserShow    = "users/show"
	PageFollowing   = "users/following"
	PageFollowers   = "users/followers"
	PageLikes       = "users/likes"
	PageEditProfile = "users/edit"
	PageNewMessage  = "messages/new"
	PageMessage     = "messages/show"
)

type HomeData struct {
	Messages []model.MessageWithAuthor
	Liked    map[int64]bool
}

type SignupData struct {
	Form         form.SignupForm
	Errors       form.Errors
	MediaEnabled bool
}

type LoginData struct {
	Form   form.LoginForm
	Errors form.Errors
}

type UsersData struct {
	Users     []model.UserSummary
	Query     string
	Following map[int64]bool
}

// ProfileData backs the profile page and its following/followers/likes tabs.
// Messages is used by the show and likes tabs, Users by the follow tabs.
type ProfileData struct {
	Profile     *model.Profile
	IsFollowing bool
	Messages    []model.MessageWithAuthor
	Liked       map[int64]bool
	Users       []model.UserSummary
	Following   map[int64]bool
}

type EditProfileData struct {
	Form         form.ProfileForm
	Errors       form.Errors
	MediaEnabled bool
}

type NewMessageData struct {
	Form   form.MessageForm
	Errors form.Errors
}

type MessageData struct {
	Message *model.MessageWithAuthor
	Liked   bool
}

type ErrorData struct {
	Status  int
	Message string
}
