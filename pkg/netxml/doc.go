// Package netxml reads the parts of a SUMO network file (*.net.xml) that
// define the conflict relation of a junction.
//
// Each <junction> holds one <request> element per controlled connection:
//
//	<junction id="C" type="traffic_light" ...>
//	    <request index="0" response="0000" foes="1010" cont="0"/>
//	    ...
//	</junction>
//
// The foes attribute lists, for the request's connection, which connections
// it conflicts with. SUMO writes connection 0 as the rightmost character, so
// [Junction.FoeMatrix] reverses each row before building a
// [conflict.Matrix].
//
// Traffic light programs (<tlLogic>) are read as well so that existing
// programs can be checked against the computed safe phases.
package netxml
