/*
 * doc.go, part of goprep.
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

//Package prep contains the structural data model and coordinate readers used to
//prepare a macromolecular model for refinement: hierarchical Structure/Model/
//Chain/Residue/Atom types, recorded connections between atoms, per-element
//reference data (covalent radii, masses) and distance-based bond inference.
//The actual preparation pipeline lives in the subpackages monlib (monomer
//restraint dictionaries), neighbor (symmetry-aware contact search and link
//discovery) and topo (topology/restraint building and hydrogen handling), tied
//together by cmd/prep.
package prep
