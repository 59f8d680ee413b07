// This file is part of nrfemu.
//
// nrfemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// nrfemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with nrfemu.  If not, see <https://www.gnu.org/licenses/>.

// Package version records the version number of the project as a whole.
package version

import "runtime/debug"

// the number of the most recent release
const number = "0.1.0"

// Version returns the version string to be displayed to the user. If the
// binary was built from a checkout with VCS information available then the
// revision is appended to the release number.
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return number
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return number + " (" + s.Value[:7] + ")"
		}
	}

	return number
}
