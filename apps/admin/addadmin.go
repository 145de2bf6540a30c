package main

import (
	"context"
)

// addAdmin creates an admin account, or resets its password when the email
// is already taken by an admin.
func (cli *commandLine) addAdmin(email, pwd string) error {
	_, err := cli.acctSvc.CreateAdmin(context.Background(), email, pwd)
	return err
}
