package skeletonfile

import "encoding/xml"

type document struct {
	XMLName   xml.Name      `xml:"Skeletons"`
	Skeletons []xmlSkeleton `xml:"Skeleton"`
}

type xmlSkeleton struct {
	ID       string       `xml:"id,attr"`
	State    string       `xml:"state,attr"`
	Position *xmlPosition `xml:"Position"`
	Joints   *xmlJoints   `xml:"Joints"`
}

type xmlJoints struct {
	Joints []xmlJoint `xml:"Joint"`
}

type xmlJoint struct {
	Type     string       `xml:"type,attr"`
	TypeID   string       `xml:"typeId,attr"`
	State    string       `xml:"state,attr"`
	Position *xmlPosition `xml:"Position"`
}

type xmlPosition struct {
	X string `xml:"posx,attr"`
	Y string `xml:"posy,attr"`
	Z string `xml:"posz,attr"`
}
