package service

import "github.com/nickle23/DistriMundoEscolar/internal/entity"

type LoginInput struct {
	Code          string
	Device        string
	RemoteAddress *string
}

type LoginResult struct {
	Token     string
	ExpiresIn int64
	Vendor    *entity.Vendor
}
