package topo

import (
	prep "github.com/rmera/goprep"
)

//errDecorate is a helper function that asserts that the error implements
//prep.Error and decorates it with the caller's name before returning it.
//Errors of other types are wrapped instead.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	err2, ok := err.(prep.Error)
	if !ok {
		return prep.NewError(err.Error(), caller)
	}
	err2.Decorate(caller)
	return err2
}
