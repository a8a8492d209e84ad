// Package dbtest 提供基于 sqlite 临时文件的测试库，已建表并写入一组样例数据
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hatlonely/hms/database"
)

// Seed 样例数据，按外键依赖顺序写入
var Seed = []string{
	`INSERT INTO Hospital_Branch (Branch_ID, Branch_Name, Branch_Address, Branch_Phone_Number, State, Zip_Code) VALUES
		(1, 'Downtown Medical', '100 Main St', '214-555-0100', 'Texas', '75001'),
		(2, 'Uptown Medical', '200 Oak Ave', '214-555-0200', 'Texas', '75002')`,
	`INSERT INTO Patient (PatientID, FirstName, LastName, Gender, DateOfBirth, Address, Phone, Email, Branch_ID) VALUES
		(1, 'John', 'Doe', 'Male', '1980-01-01', '1 Elm St', '214-555-1001', 'john@example.com', 1),
		(2, 'Jane', 'Roe', 'Female', '1990-05-12', '2 Elm St', '214-555-1002', 'jane@example.com', 1)`,
	`INSERT INTO Department (DepartmentID, DepartmentName, Location, Branch_ID) VALUES
		(1, 'CARDIOLOGY', 'North', 1),
		(2, 'NEPHROLOGY', 'South', 1)`,
	`INSERT INTO Doctor (DoctorID, FirstName, LastName, Phone, Email, DepartmentID, Branch_ID) VALUES
		(1, 'Greg', 'House', '214-555-2001', 'house@example.com', 1, 1),
		(2, 'Lisa', 'Cuddy', '214-555-2002', 'cuddy@example.com', 2, 1)`,
	`INSERT INTO Nurse (NurseID, FirstName, LastName, Phone, Email, Branch_ID) VALUES
		(1, 'Carla', 'Espinosa', '214-555-3001', 'carla@example.com', 1)`,
	`INSERT INTO Appointment (AppointmentID, PatientID, DoctorID, AppointmentDate, AppointmentTime, ReasonForVisit, Branch_ID) VALUES
		(1, 1, 1, '2024-02-01', '09:00:00', 'Chest pain', 1),
		(2, 1, 2, '2024-02-02', '10:30:00', 'Kidney check', 1),
		(3, 2, 1, '2024-02-03', '11:00:00', 'Follow up', 1)`,
	`INSERT INTO MedicalRecord (RecordID, PatientID, DoctorID, Diagnosis, Treatment, Branch_ID) VALUES
		(1, 1, 1, 'Chronic asthma', 'Inhaler', 1)`,
	`INSERT INTO Room (RoomID, RoomNumber, RoomType, Availability, Branch_ID) VALUES
		(1, '101', 'ICU', 1, 1),
		(2, '102', 'General', 1, 1),
		(3, '201', 'General', 1, 2)`,
	`INSERT INTO HospitalStay (StayID, PatientID, RoomID, AdmitDate, DischargeDate, AssignedNurseID, Branch_ID) VALUES
		(1, 1, 1, '2024-01-01', '2024-01-05', 1, 1)`,
	`INSERT INTO Billing (BillID, PatientID, TotalAmount, PaymentDate, PaymentMethod, Branch_ID) VALUES
		(1, 1, 100.0, '2024-01-10', 'Cash', 1),
		(2, 1, 50.5, '2024-02-10', 'Credit', 1),
		(3, 2, 75.0, '2024-01-15', 'Insurance', 1)`,
}

// Options 指向 t.TempDir 下的 sqlite 文件
func Options(t testing.TB) *database.Options {
	return &database.Options{
		Driver:   "sqlite3",
		Database: filepath.Join(t.TempDir(), "hms.db"),
		MaxConns: 4,
		MaxIdle:  2,
	}
}

// New 打开一个已建表但没有数据的库，测试结束时关闭
func New(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.NewDBWithOptions(Options(t))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewSeeded 在 New 的基础上写入 Seed
func NewSeeded(t testing.TB) *database.DB {
	t.Helper()

	db := New(t)
	for _, stmt := range Seed {
		if _, err := db.Exec(context.Background(), stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return db
}
