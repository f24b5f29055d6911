package voxel

// Direction identifies one of the six axis-aligned cube faces.
type Direction int

const (
	NegX Direction = iota
	PosX
	NegY
	PosY
	NegZ
	PosZ
)

// Directions lists all faces in traversal order.
var Directions = [6]Direction{NegX, PosX, NegY, PosY, NegZ, PosZ}

var directionNames = [6]string{"neg_x", "pos_x", "neg_y", "pos_y", "neg_z", "pos_z"}

func (d Direction) String() string {
	if d >= 0 && int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "invalid"
}

// faceSpec holds the neighbour offset and the quad corners of one cube face.
// Corners are unit-cube offsets from the block's minimum corner.
type faceSpec struct {
	offset  Coord
	corners [4]Coord
}

var faceSpecs = [6]faceSpec{
	NegX: {Coord{-1, 0, 0}, [4]Coord{{0, 0, 1}, {0, 1, 1}, {0, 1, 0}, {0, 0, 0}}},
	PosX: {Coord{1, 0, 0}, [4]Coord{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}},
	NegY: {Coord{0, -1, 0}, [4]Coord{{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}}},
	PosY: {Coord{0, 1, 0}, [4]Coord{{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}}},
	NegZ: {Coord{0, 0, -1}, [4]Coord{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}},
	PosZ: {Coord{0, 0, 1}, [4]Coord{{1, 0, 1}, {1, 1, 1}, {0, 1, 1}, {0, 0, 1}}},
}

// Offset returns the unit step towards the neighbour sharing this face.
func (d Direction) Offset() Coord {
	return faceSpecs[d].offset
}

// Corners returns the face's quad corners in winding order.
func (d Direction) Corners() [4]Coord {
	return faceSpecs[d].corners
}

// FaceRecord is one cube face selected for meshing.
type FaceRecord struct {
	Position  Coord
	BlockType int
	Direction Direction
	Corners   [4]Coord
}

func newFace(c Coord, id int, d Direction) FaceRecord {
	return FaceRecord{Position: c, BlockType: id, Direction: d, Corners: faceSpecs[d].corners}
}

// ComputeVisibleFaces returns every face whose neighbour cell is empty.
// Any occupied neighbour hides the face, whatever its block type.
func ComputeVisibleFaces(occ *OccupancyMap) []FaceRecord {
	var faces []FaceRecord
	for _, c := range occ.Coords() {
		id := occ.cells[c]
		for _, d := range Directions {
			// TODO: let liquid neighbours show the face once liquids get their own material pass.
			if occ.Has(c.Add(d.Offset())) {
				continue
			}
			faces = append(faces, newFace(c, id, d))
		}
	}
	return faces
}

// GenerateAllFaces returns all six faces of every cell, without culling.
func GenerateAllFaces(occ *OccupancyMap) []FaceRecord {
	faces := make([]FaceRecord, 0, occ.Len()*6)
	for _, c := range occ.Coords() {
		id := occ.cells[c]
		for _, d := range Directions {
			faces = append(faces, newFace(c, id, d))
		}
	}
	return faces
}
