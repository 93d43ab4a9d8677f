package assets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/g3n/engine/loader/obj"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/tessera/engine/resources"
)

// ImportMesh decodes a Wavefront OBJ file into engine mesh data. Each OBJ
// object becomes one mesh part; faces are triangulated and vertices
// deduplicated per part. A sibling .mtl file is used when present.
func ImportMesh(path string) (*resources.MeshData, error) {
	meshFile, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening mesh %q", path)
	}
	defer meshFile.Close()

	var decoder *obj.Decoder
	mtlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".mtl"
	if matFile, matErr := os.Open(mtlPath); matErr == nil {
		defer matFile.Close()
		decoder, err = obj.DecodeReader(meshFile, matFile)
	} else {
		decoder, err = obj.DecodeReader(meshFile, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding mesh %q", path)
	}

	mesh := &resources.MeshData{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Path: path,
	}

	for _, decodedObj := range decoder.Objects {
		part := &resources.MeshPart{}
		uniqueVertices := make(map[[2]int]uint32)

		for _, face := range decodedObj.Faces {
			// Triangulate the face fan-style.
			for i := 2; i < len(face.Vertices); i++ {
				addVertex(decoder, part, uniqueVertices, face, 0)
				addVertex(decoder, part, uniqueVertices, face, i-1)
				addVertex(decoder, part, uniqueVertices, face, i)
			}
			if part.Texture == "" && face.Material != "" {
				if mat, ok := decoder.Materials[face.Material]; ok && mat.MapKd != "" {
					part.Texture = mat.MapKd
				}
			}
		}

		if len(part.Indices) > 0 {
			mesh.Parts = append(mesh.Parts, part)
		}
	}

	if len(mesh.Parts) == 0 {
		return nil, errors.Newf("mesh %q contains no drawable faces", path)
	}
	return mesh, nil
}

func addVertex(decoder *obj.Decoder, part *resources.MeshPart, uniqueVertices map[[2]int]uint32, face obj.Face, faceIndex int) {
	vertInd := face.Vertices[faceIndex]
	uvInd := -1
	if len(face.Uvs) > faceIndex {
		uvInd = face.Uvs[faceIndex]
	}

	key := [2]int{vertInd, uvInd}
	index, vertexExists := uniqueVertices[key]
	if !vertexExists {
		vert := resources.Vertex3D{
			Position: mgl32.Vec3{
				decoder.Vertices[vertInd*3],
				decoder.Vertices[vertInd*3+1],
				decoder.Vertices[vertInd*3+2],
			},
			Color: mgl32.Vec3{1, 1, 1},
		}
		if uvInd >= 0 && uvInd*2+1 < len(decoder.Uvs) {
			vert.TexCoord = mgl32.Vec2{
				decoder.Uvs[uvInd*2],
				1.0 - decoder.Uvs[uvInd*2+1],
			}
		}

		index = uint32(len(part.Vertices))
		part.Vertices = append(part.Vertices, vert)
		uniqueVertices[key] = index
	}

	part.Indices = append(part.Indices, index)
}
