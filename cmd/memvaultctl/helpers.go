package main

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const passcodeHeader = "X-MemVault-Passcode"

func newClient() *resty.Client {
	c := resty.New().
		SetBaseURL(apiFlag).
		SetTimeout(2 * time.Minute)
	if passcodeFlag != "" {
		c.SetHeader(passcodeHeader, passcodeFlag)
	}
	return c
}

// checkStatus turns a non-2xx response into an error carrying the body.
func checkStatus(resp *resty.Response) error {
	if resp.IsError() {
		return fmt.Errorf("%s: %s", resp.Status(), resp.String())
	}
	return nil
}
