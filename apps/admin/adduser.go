package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

// addUser creates or updates a teacher account. It bypasses registration so
// the very first teacher can exist before any secret code is handed out.
func (cli *commandLine) addUser(uname, email, pwd, code string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if code == "" {
		if len(cli.conf.TeacherCodes) == 0 {
			return errors.New("no teacher secret codes configured")
		}
		code = cli.conf.TeacherCodes[0]
	}
	codes := user.NewCodeRegistry(cli.conf)
	role, access, err := codes.Resolve(code)
	if err != nil {
		return err
	}
	if role != user.RoleTeacher {
		return fmt.Errorf("%q is not a teacher code", code)
	}

	usr, err := cli.usrRepo.GetUserByUsername(ctx, uname)
	if errors.Cause(err) == user.ErrNotFound {
		usr, err = cli.usrRepo.GetUserByEmail(ctx, email)
	}
	now := time.Now().UTC()
	switch errors.Cause(err) {
	case nil:
		// existing account is promoted
		usr.Username = uname
		usr.Email = email
		usr.Role = role
		usr.Access = access
		usr.UpdatedAt = now
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
		return err
	case user.ErrNotFound:
		usr = user.User{
			Username:  uname,
			Email:     email,
			Role:      role,
			Access:    access,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	default:
		return err
	}
}
