/*
 * errors.go, part of goprep.
 *
 *
 * Copyright 2024 Raul Mera <rmeraaatacademicosdotutadotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 * goprep is developed at Universidad de Tarapaca (UTA)
 *
 */

package prep

// Error is the interface for errors that all packages in this library implement.
// The Decorate method allows to add and retrieve info from the error, without
// changing its type or wrapping it around something else. The decorate slice
// should contain a list of functions in the calling stack, plus, for each
// function, any relevant information, or nothing. If information is to be added
// to an element of the slice, it should be in this format: "FunctionName: Extra info".
// If passed an empty string, Decorate should just return the current deco slice.
type Error interface {
	Error() string
	Decorate(string) []string
}

// CError is the concrete error type of the prep packages.
type CError struct {
	msg  string
	deco []string
}

func (err CError) Error() string { return err.msg }

// Decorate adds new information to the error.
func (err CError) Decorate(deco string) []string {
	//deco is a slice, so a pointer itself; the value receiver still works.
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// NewError builds a CError with the given message, already decorated
// with the caller's name.
func NewError(msg, caller string) Error {
	return CError{msg: msg, deco: []string{caller}}
}

// errDecorate asserts that err implements Error and decorates it with the
// caller's name before returning it. A nil err is returned as is.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	err2, ok := err.(Error)
	if !ok {
		return CError{msg: err.Error(), deco: []string{caller}}
	}
	err2.Decorate(caller)
	return err2
}
