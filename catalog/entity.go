package catalog

// 每张表对应一个强类型记录，字段顺序即参数绑定顺序

type HospitalBranch struct {
	_                 struct{} `table:"Hospital_Branch"`
	BranchID          int64    `rdb:"Branch_ID,primary"`
	BranchName        string   `rdb:"Branch_Name,size=100,unique" validate:"required,alphaspace"`
	BranchAddress     string   `rdb:"Branch_Address,size=255,unique" validate:"required"`
	BranchPhoneNumber string   `rdb:"Branch_Phone_Number,size=15,unique" validate:"required,phone"`
	State             string   `rdb:"State,size=50" validate:"required,alphaunicode"`
	ZipCode           string   `rdb:"Zip_Code,size=10" validate:"required,number"`
}

func (*HospitalBranch) Entity() string { return "Hospital_Branch" }

type Patient struct {
	_           struct{} `table:"Patient"`
	PatientID   int64    `rdb:"PatientID,primary"`
	FirstName   string   `rdb:"FirstName,size=50" validate:"required,alphaunicode" norm:"capitalize"`
	LastName    string   `rdb:"LastName,size=50" validate:"required,alphaunicode" norm:"capitalize"`
	Gender      string   `rdb:"Gender,size=10" validate:"required,oneof=Male Female Other"`
	DateOfBirth string   `rdb:"DateOfBirth,type=date" validate:"required,datetime=2006-01-02"`
	Address     string   `rdb:"Address,size=255" validate:"required"`
	Phone       string   `rdb:"Phone,size=15,unique" validate:"required,phone"`
	Email       string   `rdb:"Email,size=100,unique" validate:"required,looseemail"`
	BranchID    int64    `rdb:"Branch_ID,ref=Hospital_Branch.Branch_ID" validate:"min=1,max=2"`
}

func (*Patient) Entity() string { return "Patient" }

type Department struct {
	_              struct{} `table:"Department"`
	DepartmentID   int64    `rdb:"DepartmentID,primary"`
	DepartmentName string   `rdb:"DepartmentName,size=100" validate:"required,upperspace" norm:"upper"`
	Location       string   `rdb:"Location,size=100" validate:"required,alphaunicode"`
	BranchID       int64    `rdb:"Branch_ID,ref=Hospital_Branch.Branch_ID" validate:"min=1,max=2"`
}

func (*Department) Entity() string { return "Department" }

type Doctor struct {
	_            struct{} `table:"Doctor"`
	DoctorID     int64    `rdb:"DoctorID,primary"`
	FirstName    string   `rdb:"FirstName,size=50" validate:"required,alphaunicode" norm:"capitalize"`
	LastName     string   `rdb:"LastName,size=50" validate:"required,alphaunicode" norm:"capitalize"`
	Phone        string   `rdb:"Phone,size=15,unique" validate:"required,phone"`
	Email        string   `rdb:"Email,size=100,unique" validate:"required,looseemail"`
	DepartmentID int64    `rdb:"DepartmentID,ref=Department.DepartmentID" validate:"min=1,max=10"`
	BranchID     int64    `rdb:"Branch_ID,ref=Hospital_Branch.Branch_ID" validate:"min=1,max=2"`
}

func (*Doctor) Entity() string { return "Doctor" }

type Nurse struct {
	_         struct{} `table:"Nurse"`
	NurseID   int64    `rdb:"NurseID,primary"`
	FirstName string   `rdb:"FirstName,size=50" validate:"required,alphaunicode" norm:"capitalize"`
	LastName  string   `rdb:"LastName,size=50" validate:"required,alphaunicode" norm:"capitalize"`
	Phone     string   `rdb:"Phone,size=15,unique" validate:"required,phone"`
	Email     string   `rdb:"Email,size=100,unique" validate:"required,looseemail"`
	BranchID  int64    `rdb:"Branch_ID,ref=Hospital_Branch.Branch_ID" validate:"min=1,max=2"`
}

func (*Nurse) Entity() string { return "Nurse" }

type Appointment struct {
	_               struct{} `table:"Appointment"`
	AppointmentID   int64    `rdb:"AppointmentID,primary"`
	PatientID       int64    `rdb:"PatientID,ref=Patient.PatientID,unique=uq_appointment" validate:"gt=0"`
	DoctorID        int64    `rdb:"DoctorID,ref=Doctor.DoctorID,unique=uq_appointment" validate:"gt=0"`
	AppointmentDate string   `rdb:"AppointmentDate,type=date,unique=uq_appointment" validate:"required,datetime=2006-01-02"`
	AppointmentTime string   `rdb:"AppointmentTime,type=time,unique=uq_appointment" validate:"required,datetime=15:04:05" norm:"clock"`
	ReasonForVisit  string   `rdb:"ReasonForVisit,size=255" validate:"required"`
	BranchID        int64    `rdb:"Branch_ID,ref=Hospital_Branch.Branch_ID" validate:"min=1,max=2"`
}

func (*Appointment) Entity() string { return "Appointment" }

type MedicalRecord struct {
	_           struct{} `table:"MedicalRecord"`
	RecordID    int64    `rdb:"RecordID,primary"`
	PatientID   int64    `rdb:"PatientID,ref=Patient.PatientID" validate:"gt=0"`
	DoctorID    int64    `rdb:"DoctorID,ref=Doctor.DoctorID" validate:"gt=0"`
	Diagnosis   string   `rdb:"Diagnosis,size=255" validate:"required"`
	Treatment   string   `rdb:"Treatment,size=255" validate:"required"`
	BranchID    int64    `rdb:"Branch_ID,ref=Hospital_Branch.Branch_ID" validate:"min=1,max=2"`
	DateOfEntry string   `rdb:"DateOfEntry,type=datetime,default=CURRENT_TIMESTAMP,readonly"`
}

func (*MedicalRecord) Entity() string { return "MedicalRecord" }

type Room struct {
	_            struct{} `table:"Room"`
	RoomID       int64    `rdb:"RoomID,primary"`
	RoomNumber   string   `rdb:"RoomNumber,size=10,unique" validate:"required"`
	RoomType     string   `rdb:"RoomType,size=50" validate:"required,alphaunicode"`
	Availability bool     `rdb:"Availability"`
	BranchID     int64    `rdb:"Branch_ID,ref=Hospital_Branch.Branch_ID" validate:"min=1,max=2"`
}

func (*Room) Entity() string { return "Room" }

type HospitalStay struct {
	_               struct{} `table:"HospitalStay"`
	StayID          int64    `rdb:"StayID,primary"`
	PatientID       int64    `rdb:"PatientID,ref=Patient.PatientID,unique=uq_stay" validate:"gt=0"`
	RoomID          int64    `rdb:"RoomID,ref=Room.RoomID,unique=uq_stay" validate:"gt=0"`
	AdmitDate       string   `rdb:"AdmitDate,type=date,unique=uq_stay" validate:"required,datetime=2006-01-02"`
	DischargeDate   *string  `rdb:"DischargeDate,type=date" validate:"omitempty,datetime=2006-01-02"`
	AssignedNurseID int64    `rdb:"AssignedNurseID,ref=Nurse.NurseID" validate:"gt=0"`
	BranchID        int64    `rdb:"Branch_ID,ref=Hospital_Branch.Branch_ID" validate:"min=1,max=2"`
}

func (*HospitalStay) Entity() string { return "HospitalStay" }

type Billing struct {
	_             struct{} `table:"Billing"`
	BillID        int64    `rdb:"BillID,primary"`
	PatientID     int64    `rdb:"PatientID,ref=Patient.PatientID,unique=uq_billing" validate:"gt=0"`
	TotalAmount   float64  `rdb:"TotalAmount,type=decimal,size=10" validate:"gt=0"`
	PaymentDate   string   `rdb:"PaymentDate,type=date,unique=uq_billing" validate:"required,datetime=2006-01-02"`
	PaymentMethod string   `rdb:"PaymentMethod,size=20" validate:"required,oneof=Cash Credit Debit Insurance"`
	BranchID      int64    `rdb:"Branch_ID,ref=Hospital_Branch.Branch_ID" validate:"min=1,max=2"`
}

func (*Billing) Entity() string { return "Billing" }
