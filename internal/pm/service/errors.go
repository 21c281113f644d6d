package service

import "errors"

var (
	// ErrInvalidInput 业务校验失败（越界进度、非法日期等）
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmailTaken 注册邮箱已存在
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials 登录凭证错误
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrForbidden 当前用户无权访问该资源
	ErrForbidden = errors.New("access denied")
)
