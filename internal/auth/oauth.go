package auth

import (
	"golang.org/x/oauth2"
)

const (
	// Garmin Connect OAuth endpoints
	AuthURL  = "https://connect.garmin.com/oauth2Confirm"
	TokenURL = "https://diauth.garmin.com/di-oauth2-service/oauth/token"
)

// Scopes required for our app
var Scopes = []string{
	"activity:read",
	"activity:write",
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "http://localhost:8089/callback"
}

// NewOAuthConfig creates an oauth2.Config from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  AuthURL,
			TokenURL: TokenURL,
		},
		RedirectURL: cfg.RedirectURL,
		Scopes:      Scopes,
	}
}

// AuthResult contains the token and user info from successful auth
type AuthResult struct {
	Token  *oauth2.Token
	UserID int64
}

// ExtractUserID extracts the user ID from the token extras when the
// token response includes one
func ExtractUserID(token *oauth2.Token) int64 {
	if id, ok := token.Extra("userId").(float64); ok {
		return int64(id)
	}
	return 0
}
